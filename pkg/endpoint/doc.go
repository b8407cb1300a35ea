// Package endpoint defines the registered backend record and the origin
// validation rules applied before any backend address is persisted or dialed.
package endpoint
