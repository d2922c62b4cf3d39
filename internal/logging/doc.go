// Package logging builds the slog loggers used across Digitarr.
//
// Loggers are constructed once at startup from configuration and injected
// into components; no package keeps ambient global logging state. Two
// output formats are supported: a compact console format and JSON.
package logging
