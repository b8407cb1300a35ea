// Package middleware provides the HTTP middleware chain for the gateway:
// panic recovery, request logging, request-id propagation, CORS, and
// per-request timeouts. Middleware is composed outermost-first in
// gateway.Server.
package middleware
