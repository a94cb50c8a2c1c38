// Package config loads, normalizes, and validates Mural configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STEAM_API_KEY. The Config type centralizes every knob the daemon and CLI
// need, from filter lists and rotation behavior to steamcmd credentials.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, parsed schedule durations, and clear validation errors.
package config
