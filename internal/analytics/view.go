package analytics

import (
	"sort"

	"github.com/streamscope/streamscope/internal/dataset"
)

// Rating histogram buckets: [0,0.5), [0.5,1.0), ... [4.5,5.0]. The last
// bucket is closed so a 5.0 rating lands in it instead of falling off.
const (
	bucketWidth = 0.5
	bucketCount = 10
)

// HistogramBucket is one fixed-width rating interval.
type HistogramBucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// YearStat is a per-year aggregate row, ordered ascending by year.
type YearStat struct {
	Year       int     `json:"year"`
	Count      int     `json:"count"`
	MeanRating float64 `json:"meanRating"`
}

// GenreCount is a genre with the number of records listing it.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// RatingStats summarizes a rating distribution (the box-plot feed).
type RatingStats struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// View is the derived read-only summary of a dataset under criteria. It is
// recomputed on every criteria change and never cached across requests.
type View struct {
	Criteria Criteria `json:"criteria"`

	Count      int      `json:"count"`
	MeanRating *float64 `json:"meanRating"` // nil when the view is empty

	CountByType map[dataset.ContentType]int         `json:"countByType"`
	Histogram   []HistogramBucket                   `json:"ratingHistogram"`
	ByYear      []YearStat                          `json:"byYear"`
	StatsByType map[dataset.ContentType]RatingStats `json:"ratingStatsByType"`
	GenreCounts []GenreCount                        `json:"genreCounts"` // count desc, alpha asc on ties

	records []dataset.Record
}

// Apply filters the dataset by criteria and computes the full summary. It is
// pure: the dataset is never mutated and identical inputs yield identical
// views. An empty result is a zero-count view, not an error.
func Apply(ds *dataset.Dataset, criteria Criteria) (*View, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	m := compile(criteria)
	v := &View{
		Criteria:    criteria,
		CountByType: make(map[dataset.ContentType]int),
		StatsByType: make(map[dataset.ContentType]RatingStats),
	}

	for _, rec := range ds.Records {
		if m.matches(rec) {
			v.records = append(v.records, rec)
		}
	}
	v.Count = len(v.records)

	v.summarize()
	return v, nil
}

// Records returns the filtered subset sorted by rating descending, the
// ordering the raw-data table displays.
func (v *View) Records() []dataset.Record {
	out := make([]dataset.Record, len(v.records))
	copy(out, v.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})
	return out
}

// TopGenres returns the n most frequent genres. Ties break alphabetically
// ascending so the result is deterministic.
func (v *View) TopGenres(n int) []GenreCount {
	if n > len(v.GenreCounts) {
		n = len(v.GenreCounts)
	}
	if n < 0 {
		n = 0
	}
	out := make([]GenreCount, n)
	copy(out, v.GenreCounts[:n])
	return out
}

func (v *View) summarize() {
	v.Histogram = make([]HistogramBucket, bucketCount)
	for i := range v.Histogram {
		v.Histogram[i].Low = float64(i) * bucketWidth
		v.Histogram[i].High = float64(i+1) * bucketWidth
	}

	if v.Count == 0 {
		return
	}

	var ratingSum float64
	yearAgg := make(map[int]*YearStat)
	genreAgg := make(map[string]*GenreCount) // keyed lowercase
	ratingsByType := make(map[dataset.ContentType][]float64)

	for _, rec := range v.records {
		v.CountByType[rec.Type]++
		ratingSum += rec.Rating
		ratingsByType[rec.Type] = append(ratingsByType[rec.Type], rec.Rating)

		b := int(rec.Rating / bucketWidth)
		if b >= bucketCount {
			b = bucketCount - 1
		}
		v.Histogram[b].Count++

		ys, ok := yearAgg[rec.Year]
		if !ok {
			ys = &YearStat{Year: rec.Year}
			yearAgg[rec.Year] = ys
		}
		ys.Count++
		ys.MeanRating += rec.Rating

		// Every listed genre counts, so genre totals may exceed Count.
		for i, key := range rec.GenreKeys() {
			gc, ok := genreAgg[key]
			if !ok {
				gc = &GenreCount{Genre: rec.Genres[i]}
				genreAgg[key] = gc
			}
			gc.Count++
		}
	}

	mean := ratingSum / float64(v.Count)
	v.MeanRating = &mean

	v.ByYear = make([]YearStat, 0, len(yearAgg))
	for _, ys := range yearAgg {
		ys.MeanRating /= float64(ys.Count)
		v.ByYear = append(v.ByYear, *ys)
	}
	sort.Slice(v.ByYear, func(i, j int) bool { return v.ByYear[i].Year < v.ByYear[j].Year })

	v.GenreCounts = make([]GenreCount, 0, len(genreAgg))
	for _, gc := range genreAgg {
		v.GenreCounts = append(v.GenreCounts, *gc)
	}
	sort.Slice(v.GenreCounts, func(i, j int) bool {
		if v.GenreCounts[i].Count != v.GenreCounts[j].Count {
			return v.GenreCounts[i].Count > v.GenreCounts[j].Count
		}
		return v.GenreCounts[i].Genre < v.GenreCounts[j].Genre
	})

	for t, ratings := range ratingsByType {
		v.StatsByType[t] = ratingStats(ratings)
	}
}

// ratingStats computes five-number summary statistics over a non-empty
// sample. Quartiles use linear interpolation between closest ranks.
func ratingStats(sample []float64) RatingStats {
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	return RatingStats{
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
