package endpoint

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidOrigin is returned by ParseOrigin for any candidate that is not
// an acceptable backend address.
var ErrInvalidOrigin = errors.New("invalid origin (expected http://host:port)")

// ParseOrigin validates a candidate backend address and returns its
// normalized origin form (scheme + authority). It is pure and performs no
// I/O.
//
// A candidate is rejected when it does not parse as a URL, when its scheme
// is not http or https, or when it carries a query string, a fragment, or
// embedded userinfo credentials. A path component is not a rejection: only
// the origin is a meaningful backend address, so any path is discarded.
//
// ParseOrigin is idempotent over its own output: re-validating a returned
// origin yields the same origin.
func ParseOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOrigin, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidOrigin, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidOrigin)
	}
	if u.RawQuery != "" || u.ForceQuery {
		return "", fmt.Errorf("%w: query string not allowed", ErrInvalidOrigin)
	}
	if u.Fragment != "" {
		return "", fmt.Errorf("%w: fragment not allowed", ErrInvalidOrigin)
	}
	if u.User != nil {
		return "", fmt.Errorf("%w: userinfo not allowed", ErrInvalidOrigin)
	}

	return u.Scheme + "://" + u.Host, nil
}
