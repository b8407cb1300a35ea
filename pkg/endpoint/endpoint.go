package endpoint

// Record describes a registered Rosetta backend. Records are keyed by a
// caller-chosen identifier in the registry; the identifier itself is not part
// of the record.
type Record struct {
	// Name is the display name shown in the UI. Required, non-empty.
	Name string `json:"name"`

	// URL is the backend origin (scheme + host + optional port). It has
	// always passed ParseOrigin before being stored; it is the only form
	// ever persisted or dialed.
	URL string `json:"url"`
}
