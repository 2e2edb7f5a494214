// Package config loads runtime configuration for the waterwatch CLI client.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// Flags
//
//	-a string   base URL of the server, e.g. http://127.0.0.1:3100
//	-t int      request timeout in seconds
//	-o string   directory for downloaded exports
//	-d string   local SQLite file holding the session and offline queue
//
// JSON keys are server_url, request_timeout ("10s" or nanoseconds),
// export_dir and local_db.
package config
