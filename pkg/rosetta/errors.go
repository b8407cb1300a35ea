package rosetta

import (
	"errors"
	"fmt"
)

// Error kind constants. The kind discriminates gateway failures for HTTP
// status mapping and for programmatic handling; it is not part of the wire
// payload.
const (
	// KindValidation indicates bad input shape (missing field, invalid URL).
	KindValidation = "validation"

	// KindConflict indicates a duplicate endpoint identifier.
	KindConflict = "conflict"

	// KindNotFound indicates an unknown endpoint identifier.
	KindNotFound = "not_found"

	// KindUnreachable indicates a probe could not reach the backend at all
	// (connection refused, timeout, TLS failure).
	KindUnreachable = "unreachable"

	// KindMalformed indicates a probed backend answered with a body that is
	// not parseable JSON.
	KindMalformed = "malformed"

	// KindNonConformant indicates a probed backend answered with JSON that
	// does not carry a network_identifiers sequence.
	KindNonConformant = "non_conformant"

	// KindProxyFailure indicates the forwarding call itself failed while
	// proxying a request to a registered backend.
	KindProxyFailure = "proxy_failure"

	// KindPersistence indicates the durable registry write failed; the
	// triggering mutation was rolled back.
	KindPersistence = "persistence"

	// KindInternal indicates an unexpected gateway-side failure that fits
	// no other kind.
	KindInternal = "internal"
)

// Error is the structured error envelope for every gateway-originated
// failure. It serializes to the {code, message, retriable, details?} shape
// the UI expects, which is the same envelope shape Rosetta backends use for
// their own errors.
//
// The envelope is constructed once at the point of failure with its Kind
// discriminant and propagated outward unchanged; HTTP handlers derive the
// response status from the kind via HTTPStatusCode.
type Error struct {
	// Kind categorizes the failure. Not serialized.
	Kind string `json:"-"`

	// Code is a machine-readable error code. The gateway does not maintain
	// a Rosetta error code space of its own and uses -1 throughout, matching
	// what UI clients already tolerate from backends.
	Code int32 `json:"code"`

	// Message is a human-readable description of the failure.
	Message string `json:"message"`

	// Retriable reports whether retrying the same request can succeed
	// without anything else changing.
	Retriable bool `json:"retriable"`

	// Details carries optional structured context (underlying transport
	// error text, the offending identifier, ...).
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// HTTPStatusCode returns the HTTP status the gateway responds with for this
// error kind.
func (e *Error) HTTPStatusCode() int {
	switch e.Kind {
	case KindValidation, KindMalformed, KindNonConformant:
		return 422
	case KindConflict:
		return 409
	case KindNotFound:
		return 404
	case KindUnreachable, KindProxyFailure, KindPersistence:
		return 500
	default:
		return 500
	}
}

// WithDetail returns e with a detail key set, allocating the details map on
// first use. It returns e to allow chaining at construction sites.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewValidationError reports bad input shape. Never retriable.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Code: -1, Message: message}
}

// NewConflictError reports a duplicate endpoint identifier. Never retriable
// without choosing a new identifier.
func NewConflictError(id string) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    -1,
		Message: "Server id already in use",
		Details: map[string]interface{}{"id": id},
	}
}

// NewNotFoundError reports an unknown endpoint identifier.
func NewNotFoundError(id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    -1,
		Message: "Endpoint not found",
		Details: map[string]interface{}{
			"message": fmt.Sprintf("Backend could not find an endpoint with id %q", id),
		},
	}
}

// NewUnreachableError reports a probe transport failure. Not retriable until
// the backend itself is reachable again; registration is an explicit user
// action and the user is expected to retry.
func NewUnreachableError(origin string, cause error) *Error {
	e := &Error{
		Kind:    KindUnreachable,
		Code:    -1,
		Message: "Error fetching network JSON",
	}
	e.WithDetail("origin", origin)
	if cause != nil {
		e.WithDetail("cause", cause.Error())
	}
	return e
}

// NewMalformedError reports a probe response that was not parseable JSON.
func NewMalformedError(origin string) *Error {
	e := &Error{
		Kind:    KindMalformed,
		Code:    -1,
		Message: "Url did not respond per Rosetta API spec",
	}
	return e.WithDetail("origin", origin)
}

// NewNonConformantError reports a probe response missing the
// network_identifiers sequence.
func NewNonConformantError(origin string) *Error {
	e := &Error{
		Kind:    KindNonConformant,
		Code:    -1,
		Message: "Invalid response (expected { network_identifiers: [] })",
	}
	return e.WithDetail("origin", origin)
}

// NewProxyFailureError reports a transport failure while forwarding a request
// to a registered backend. Retriable: the backend may recover.
func NewProxyFailureError(id string, cause error) *Error {
	e := &Error{
		Kind:      KindProxyFailure,
		Code:      -1,
		Message:   "Error forwarding request to endpoint",
		Retriable: true,
	}
	e.WithDetail("id", id)
	if cause != nil {
		e.WithDetail("cause", cause.Error())
	}
	return e
}

// NewPersistenceError reports a failed durable registry write. The in-memory
// registry was rolled back, so retrying the mutation is safe once the store
// is healthy again.
func NewPersistenceError(cause error) *Error {
	e := &Error{
		Kind:      KindPersistence,
		Code:      -1,
		Message:   "Error persisting server registry",
		Retriable: true,
	}
	if cause != nil {
		e.WithDetail("cause", cause.Error())
	}
	return e
}

// NewInternalError reports an unexpected gateway-side failure.
func NewInternalError(message string) *Error {
	return &Error{Kind: KindInternal, Code: -1, Message: message}
}

// AsError extracts a *Error from err's chain. It returns nil if err does not
// carry one.
func AsError(err error) *Error {
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	return nil
}
