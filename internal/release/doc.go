// Package release defines the candidate release model shared by sources,
// the filter engine, request sinks, and notifications.
package release
