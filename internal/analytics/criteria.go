package analytics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/streamscope/streamscope/internal/dataset"
)

// ErrInvalidCriteria marks criteria the engine refuses to apply. It is
// recoverable: callers keep the previous valid view and surface the message
// inline.
var ErrInvalidCriteria = errors.New("invalid criteria")

// YearRange is an inclusive release-year window.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Criteria is a user-chosen filter over type, genre, and year range. Empty
// Types or Genres means no restriction on that axis.
type Criteria struct {
	Types     []dataset.ContentType `json:"types"`
	Genres    []string              `json:"genres"`
	YearRange YearRange             `json:"yearRange"`
}

// Validate checks the criteria for internal consistency.
func (c Criteria) Validate() error {
	if c.YearRange.Min > c.YearRange.Max {
		return fmt.Errorf("%w: year range %d–%d is inverted", ErrInvalidCriteria, c.YearRange.Min, c.YearRange.Max)
	}
	for _, t := range c.Types {
		if t != dataset.TypeMovie && t != dataset.TypeTVShow {
			return fmt.Errorf("%w: unknown type %q", ErrInvalidCriteria, t)
		}
	}
	return nil
}

// Unrestricted returns criteria that match every record of a dataset with
// the given year bounds.
func Unrestricted(yearMin, yearMax int) Criteria {
	return Criteria{YearRange: YearRange{Min: yearMin, Max: yearMax}}
}

// matcher is the compiled form of Criteria: lookup sets instead of slices.
type matcher struct {
	types   map[dataset.ContentType]bool
	genres  map[string]bool // lowercase
	yearMin int
	yearMax int
}

func compile(c Criteria) matcher {
	m := matcher{yearMin: c.YearRange.Min, yearMax: c.YearRange.Max}
	if len(c.Types) > 0 {
		m.types = make(map[dataset.ContentType]bool, len(c.Types))
		for _, t := range c.Types {
			m.types[t] = true
		}
	}
	if len(c.Genres) > 0 {
		m.genres = make(map[string]bool, len(c.Genres))
		for _, g := range c.Genres {
			m.genres[strings.ToLower(g)] = true
		}
	}
	return m
}

// matches reports whether the record passes all three predicates. Empty type
// or genre sets are vacuously true; the genre test is set intersection.
func (m matcher) matches(rec dataset.Record) bool {
	if m.types != nil && !m.types[rec.Type] {
		return false
	}
	if rec.Year < m.yearMin || rec.Year > m.yearMax {
		return false
	}
	if m.genres != nil {
		hit := false
		for _, key := range rec.GenreKeys() {
			if m.genres[key] {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}
