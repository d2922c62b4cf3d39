// Package checker runs one check cycle: fetch today's releases, filter them,
// fan out to the configured requesters, and hand successful requests to the
// notifier. A cycle aggregates sink failures into its report instead of
// returning them, so a bad day at one service never aborts the run.
package checker
