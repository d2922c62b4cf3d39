// Package notifications delivers per-release Discord webhook messages after
// a check cycle. When no webhook is configured a noop implementation is
// returned so callers never branch on configuration.
package notifications
