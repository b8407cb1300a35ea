// Package config defines the gateway configuration and its loading pipeline.
//
// Configuration is read from a YAML file, filled in with defaults, overridden
// by MENTAT_* environment variables, and validated. Environment variables
// always win over the file, so deployments can keep one checked-in config and
// vary per-instance settings through the environment.
package config
