// Package tmdb provides access to The Movie Database API for release
// discovery and metadata lookups.
package tmdb
