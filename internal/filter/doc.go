// Package filter applies the configured admission rules to candidate
// releases. Filtering is pure: it performs no I/O, preserves input order,
// and never mutates input elements.
package filter
