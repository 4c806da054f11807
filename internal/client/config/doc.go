// Package config loads runtime configuration for the dashboard CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml/.yml are read as YAML, anything else as JSON.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-p string   primary upload URL
//	-s string   secondary upload URL (large batches)
//	-t int      idle timeout in seconds
//	-d string   local database path
//	-o string   download directory
//	-u string   user name sent with file requests
//	-l string   log level
//
// # File schema
//
// Durations accept Go duration strings or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "https://files.example.com",
//	  "secondary_upload_url": "https://cold.example.com/api/upload",
//	  "upload_threshold_bytes": 10485760,
//	  "idle_timeout": "2m",
//	  "log_backend": "zap"
//	}
package config
