// Package services provides the shared error taxonomy and context
// correlation helpers used by the HTTP service clients and the checker.
package services
