// Package config loads, normalizes, and validates imgutil configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// IMGUTIL_NTFY_TOPIC. The Config type centralizes every knob the batch
// commands need, so state/log directories, worker limits, and encoder
// settings are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
