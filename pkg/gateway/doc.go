// Package gateway assembles the HTTP server: routes, middleware chain, and
// graceful shutdown around the registry, scanner, proxy, and health
// components.
package gateway
