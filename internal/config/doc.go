// Package config manages user-level settings stored at ~/.emuscan/config.yaml.
// Load resolves the file and EMUSCAN_* environment variables into a Config
// value; Set and Get back the `config` subcommands; Validate checks a file
// against the embedded JSON Schema.
package config
