// Package daemon schedules check cycles. Without a configured run time it
// executes exactly one cycle (after the optional delay) and returns; with a
// run time it loops daily at that wall-clock time until the context is
// cancelled, holding a flock so only one scheduled instance runs.
package daemon
