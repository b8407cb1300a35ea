// Package registry holds the authoritative id → endpoint mapping behind the
// gateway.
//
// The registry is an explicitly owned object: the HTTP handlers hold a
// reference to it and all mutation flows through it, making its write path
// the single serialization point for the uniqueness and durability
// invariants. Reads never block on mutations; they observe the last fully
// committed snapshot through an atomically swapped copy-on-write map.
package registry
