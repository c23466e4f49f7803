// Package config loads, normalizes, and validates favsort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BILIBILI_COOKIE and FAVSORT_LLM_API_KEY. The Config type centralizes every
// knob the CLI needs, so credentials, endpoints, and pacing values are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
