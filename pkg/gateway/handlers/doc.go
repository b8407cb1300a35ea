// Package handlers implements the gateway's HTTP surface: the status route,
// endpoint registration and removal, ad-hoc scans, the reverse proxy into
// registered Rosetta backends, and the health routes.
package handlers
