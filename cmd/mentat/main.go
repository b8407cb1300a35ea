// Mentat is a gateway for Rosetta blockchain nodes.
//
// It keeps a durable registry of Rosetta API endpoints, validates candidates
// with a conformance probe before admitting them, and reverse-proxies
// requests to registered endpoints by identifier.
//
// Usage:
//
//	# Start the gateway with default configuration
//	mentat run
//
//	# Start with a custom configuration file
//	mentat run --config /etc/mentat/config.yaml
//
//	# Validate a configuration file without starting
//	mentat validate --config /etc/mentat/config.yaml
//
//	# Show version information
//	mentat version
package main

func main() {
	Execute()
}
