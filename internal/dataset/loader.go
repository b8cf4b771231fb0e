package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Required CSV header columns. Extra columns are ignored.
const (
	ColType   = "Type"
	ColGenres = "Genre(s)"
	ColYear   = "Year"
	ColRating = "Rating (Out of 5)"
)

// Years outside this window are treated as malformed.
const (
	minPlausibleYear = 1888
	maxPlausibleYear = 2100
)

// Dataset is the immutable in-memory catalog. It is loaded once at startup
// and safely shared read-only across sessions.
type Dataset struct {
	Name        string
	Records     []Record
	DroppedRows int // malformed rows skipped during load

	YearMin int
	YearMax int
	Genres  []string // distinct genres, display casing, sorted
	Types   []ContentType
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Loader reads catalog CSV files into Datasets.
type Loader struct {
	logger zerolog.Logger
}

// NewLoader creates a dataset loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{logger: logger.With().Str("component", "dataset").Logger()}
}

// Load reads the CSV at path into a Dataset. It fails with a LoadError when
// the file is missing, unreadable, or missing a required column. Rows with an
// unparseable type, year, or rating are dropped with a warning and counted;
// they never fail the load.
func (l *Loader) Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewMissingFileError(path, err)
		}
		return nil, NewUnreadableError(path, err)
	}
	defer f.Close()

	ds, err := l.read(f, path)
	if err != nil {
		return nil, err
	}
	ds.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	l.logger.Info().
		Str("path", path).
		Int("records", len(ds.Records)).
		Int("droppedRows", ds.DroppedRows).
		Int("yearMin", ds.YearMin).
		Int("yearMax", ds.YearMax).
		Int("genres", len(ds.Genres)).
		Msg("dataset loaded")

	return ds, nil
}

// read parses CSV content from r. Split out from Load so exports can be
// round-tripped in tests without touching the filesystem.
func (l *Loader) read(r io.Reader, path string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are handled per-row

	header, err := cr.Read()
	if err != nil {
		return nil, NewUnreadableError(path, err)
	}

	cols, err := resolveColumns(path, header)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{}
	genreSet := make(map[string]string) // lowercase -> display casing
	typeSet := make(map[ContentType]bool)

	line := 1
	for {
		row, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewUnreadableError(path, err)
		}

		rec, reason := parseRow(row, cols)
		if reason != "" {
			ds.DroppedRows++
			l.logger.Warn().Int("line", line).Str("reason", reason).Msg("dropping malformed row")
			continue
		}

		for i, key := range rec.genreKeys {
			if _, ok := genreSet[key]; !ok {
				genreSet[key] = rec.Genres[i]
			}
		}
		typeSet[rec.Type] = true

		if ds.Len() == 0 || rec.Year < ds.YearMin {
			ds.YearMin = rec.Year
		}
		if ds.Len() == 0 || rec.Year > ds.YearMax {
			ds.YearMax = rec.Year
		}
		ds.Records = append(ds.Records, rec)
	}

	if ds.Len() == 0 {
		return nil, NewEmptyError(path)
	}

	for _, display := range genreSet {
		ds.Genres = append(ds.Genres, display)
	}
	sort.Slice(ds.Genres, func(i, j int) bool {
		return strings.ToLower(ds.Genres[i]) < strings.ToLower(ds.Genres[j])
	})

	if typeSet[TypeMovie] {
		ds.Types = append(ds.Types, TypeMovie)
	}
	if typeSet[TypeTVShow] {
		ds.Types = append(ds.Types, TypeTVShow)
	}

	return ds, nil
}

// columns maps required column names to header indexes.
type columns struct {
	typ, genres, year, rating int
}

func resolveColumns(path string, header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	cols := columns{}
	for _, req := range []struct {
		name string
		dst  *int
	}{
		{ColType, &cols.typ},
		{ColGenres, &cols.genres},
		{ColYear, &cols.year},
		{ColRating, &cols.rating},
	} {
		i, ok := idx[req.name]
		if !ok {
			return columns{}, NewMissingColumnError(path, req.name)
		}
		*req.dst = i
	}
	return cols, nil
}

// parseRow converts one CSV row into a Record. A non-empty reason means the
// row is malformed and must be dropped.
func parseRow(row []string, cols columns) (Record, string) {
	max := cols.typ
	for _, i := range []int{cols.genres, cols.year, cols.rating} {
		if i > max {
			max = i
		}
	}
	if len(row) <= max {
		return Record{}, "too few fields"
	}

	typ, ok := ParseContentType(row[cols.typ])
	if !ok {
		return Record{}, "unknown type " + strconv.Quote(row[cols.typ])
	}

	genres := SplitGenres(row[cols.genres])
	if len(genres) == 0 {
		return Record{}, "empty genre list"
	}

	year, err := strconv.Atoi(strings.TrimSpace(row[cols.year]))
	if err != nil {
		return Record{}, "unparseable year " + strconv.Quote(row[cols.year])
	}
	if year < minPlausibleYear || year > maxPlausibleYear {
		return Record{}, "implausible year " + strconv.Itoa(year)
	}

	rating, err := strconv.ParseFloat(strings.TrimSpace(row[cols.rating]), 64)
	if err != nil {
		return Record{}, "unparseable rating " + strconv.Quote(row[cols.rating])
	}
	if rating < 0 || rating > 5 {
		return Record{}, "rating out of bounds " + strconv.FormatFloat(rating, 'f', -1, 64)
	}

	return NewRecord(typ, genres, year, rating), ""
}
