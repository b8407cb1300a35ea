// Package rosetta contains the wire types the gateway shares with Rosetta
// backends and with its own UI clients: the network identifier payload
// returned by the discovery call, and the structured error envelope used for
// every gateway-originated failure.
//
// Backend responses proxied through the gateway are never reshaped into these
// types; they are passed through verbatim. The error envelope here is only
// ever produced by the gateway itself, which keeps gateway failures
// distinguishable from backend failures.
package rosetta
