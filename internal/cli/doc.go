// Package cli defines the Cobra command tree for the emuscan CLI. Each file
// registers one top-level command (list, find, default, connect, doctor,
// config, version) with the root command. Commands resolve a session from
// flags, config and the host environment, then delegate to internal/discovery.
package cli
