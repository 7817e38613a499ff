// Package config loads, normalizes, and validates tracksift configuration data.
//
// The interactive pipeline runs without any configuration file: Default
// supplies every value. When a TOML file exists (by default
// ~/.config/tracksift/config.toml, or the --config flag) it overrides the
// defaults for tool binaries, log routing, the encoded output directory name,
// the transcode history database and optional selection extensions.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
