// Package logging configures the process-wide structured logger.
//
// The gateway logs through Go's standard log/slog package. This package
// parses the configured level and format ("json" or "text"), builds the
// matching handler, and installs it as the slog default so every component
// logs consistently without threading a logger through each constructor.
package logging
