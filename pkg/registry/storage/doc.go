// Package storage provides durable persistence backends for the endpoint
// registry.
//
// The registry's persistence model is deliberately coarse: the whole
// id → record mapping is written in full on every mutation and read once at
// startup. Backends therefore expose exactly two data operations, Load and
// Save, over the complete mapping. Three backends are provided:
//
//   - MemoryBackend: no durability, for tests and ephemeral deployments.
//   - FileBackend: a single JSON file written atomically via rename, with an
//     optional fsnotify watcher for picking up external edits.
//   - SQLiteBackend: a single-table SQLite database rewritten transactionally
//     on every save.
package storage
