// Package config loads, normalizes, and validates fileset configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the FILESET_DB environment
// override. The Config type centralizes the catalog location, catalog charset,
// traversal archive formats, hunt policy, and logging settings so every command
// discovers them in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
