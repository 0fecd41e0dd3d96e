// Package config loads, normalizes, and validates qslgen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// QSLGEN_EMAIL_FROM and AWS_REGION. The Config type centralizes every knob the
// CLI needs, so input, template, and output locations as well as the optional
// delivery services are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
