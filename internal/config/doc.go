// Package config handles configuration loading for advisor-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	gemini:
//	  api_key: "${GEMINI_API_KEY}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	chat:
//	  provider_timeout: "60s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"   # HTTP JSON API
//
// Database:
//
//	database:
//	  path: "/var/lib/advisor/gateway.db"
//
// Completion backend:
//
//	gemini:
//	  api_key: "${GEMINI_API_KEY}"
//	  model: "gemini-2.0-flash"   # optional, this is the default
//
// History compaction:
//
//	history:
//	  threshold: 100   # unsummarized events before compaction kicks in
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - Server address and database path presence
//   - Gemini API key presence
//   - Duration format validity
//   - History threshold non-negativity
//
// # Usage
//
// Load configuration from a path:
//
//	cfg, err := config.Load("/etc/advisor/gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
