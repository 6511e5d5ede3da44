// Package config loads, normalizes, and validates capestudio configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the CAPESTUDIO_CONTENT_KEY
// environment fallback. The Config type centralizes the output, staging,
// catalog, and database locations alongside the intercepted endpoint URLs so
// the packager, catalog builder, and proxy all agree on one set of values.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
