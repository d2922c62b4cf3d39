// Package riven submits media batches to a Riven server. Before adding, it
// reconciles items the server already tracks in the Unknown state so stuck
// entries are removed and re-requested rather than silently skipped.
package riven
