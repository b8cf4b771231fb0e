package dataset

import "strings"

// ContentType classifies a catalog entry.
type ContentType string

const (
	TypeMovie  ContentType = "Movie"
	TypeTVShow ContentType = "TV Show"
)

// ParseContentType validates a raw Type cell. The loader expects the exact
// strings the source catalog uses.
func ParseContentType(raw string) (ContentType, bool) {
	switch ContentType(strings.TrimSpace(raw)) {
	case TypeMovie:
		return TypeMovie, true
	case TypeTVShow:
		return TypeTVShow, true
	}
	return "", false
}

// Record is one content title from the catalog.
type Record struct {
	Type   ContentType `json:"type"`
	Genres []string    `json:"genres"` // display casing, order preserved
	Year   int         `json:"year"`
	Rating float64     `json:"rating"` // 0–5

	// genreKeys holds lowercase genre tokens for matching. Built once at
	// load time so filtering never re-lowercases per record.
	genreKeys []string
}

// NewRecord builds a Record and its lowercase genre keys.
func NewRecord(t ContentType, genres []string, year int, rating float64) Record {
	r := Record{Type: t, Genres: genres, Year: year, Rating: rating}
	r.genreKeys = make([]string, len(genres))
	for i, g := range genres {
		r.genreKeys[i] = strings.ToLower(g)
	}
	return r
}

// HasGenre reports whether the record lists the genre, matched
// case-insensitively.
func (r Record) HasGenre(genre string) bool {
	key := strings.ToLower(genre)
	for _, g := range r.genreKeys {
		if g == key {
			return true
		}
	}
	return false
}

// GenreKeys returns the record's lowercase genre tokens.
func (r Record) GenreKeys() []string {
	return r.genreKeys
}

// SplitGenres parses a raw Genre(s) cell: split on comma, trim whitespace,
// drop empty tokens.
func SplitGenres(raw string) []string {
	parts := strings.Split(raw, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}
