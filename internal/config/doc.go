// Package config loads, normalizes, and validates Digitarr settings.
//
// Settings come from a TOML file (default ~/.config/digitarr/config.toml,
// with ./digitarr.toml as a project-local fallback). Environment variables
// override file values and are applied after decoding, so they always win.
// Validation runs before any component is constructed; a validation failure
// aborts startup.
package config
