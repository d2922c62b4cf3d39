// Package dvdreleases scrapes dvdsreleasedates.com for today's digital
// releases and cross-references each title against TMDB for full metadata.
package dvdreleases
