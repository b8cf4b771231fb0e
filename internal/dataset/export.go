package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// WriteCSV serializes records using the loader's four-column schema. Loading
// an export back through the loader reproduces the same records.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{ColType, ColGenres, ColYear, ColRating}); err != nil {
		return err
	}

	row := make([]string, 4)
	for _, rec := range records {
		row[0] = string(rec.Type)
		row[1] = strings.Join(rec.Genres, ", ")
		row[2] = strconv.Itoa(rec.Year)
		row[3] = strconv.FormatFloat(rec.Rating, 'f', -1, 64)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
