package release

import "strconv"

// MediaType identifies the kind of media a release refers to. Sources
// currently produce movies only; sinks accept both kinds.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Release is a single movie candidate surfaced by a source for potential
// requesting. Instances are immutable once produced and live for one check
// cycle only.
type Release struct {
	TMDBID           int64     `json:"tmdb_id"`
	Title            string    `json:"title"`
	Overview         string    `json:"overview"`
	VoteAverage      float64   `json:"vote_average"`
	ReleaseDate      string    `json:"release_date"`
	OriginalLanguage string    `json:"original_language"`
	Adult            bool      `json:"adult"`
	GenreNames       []string  `json:"genre_names"`
	Certification    string    `json:"certification"`
	MediaType        MediaType `json:"media_type"`
}

// Key returns the string form of the TMDB id, used to key outcome records.
func (r Release) Key() string {
	return strconv.FormatInt(r.TMDBID, 10)
}
