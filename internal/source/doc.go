// Package source defines the release source contract and its provider
// implementations. A source produces the candidate releases for "today";
// collaborator failures are recovered inside the source and surface as an
// empty result, never as an error, so a check cycle always proceeds.
package source
