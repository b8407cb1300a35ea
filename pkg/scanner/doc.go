// Package scanner probes candidate backend origins for Rosetta API
// conformance.
//
// A probe is one POST of an empty JSON object to {origin}/network/list with a
// bounded timeout and no retry. The outcome is either the backend's network
// identifier list or a structured gateway error classifying the failure as
// unreachable (transport), malformed (non-JSON body), or non-conformant
// (JSON without a network_identifiers sequence). Registration is an explicit
// user action, so failed probes are reported and left to the user to retry.
package scanner
