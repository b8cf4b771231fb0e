package analytics

import (
	_ "embed"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/streamscope/streamscope/internal/dataset"
)

//go:embed charts.yaml
var chartCatalogYAML []byte

// ChartDefinition is one entry of the embedded chart catalog.
type ChartDefinition struct {
	ID     string   `yaml:"id" json:"id"`
	Type   string   `yaml:"type" json:"type"`
	Title  string   `yaml:"title" json:"title"`
	Colors []string `yaml:"colors" json:"colors"`
	Limit  int      `yaml:"limit" json:"limit,omitempty"`
}

type chartCatalog struct {
	Charts []ChartDefinition `yaml:"charts"`
}

// ChartConfig is a render-ready chart specification. The frontend draws it;
// the engine never renders.
type ChartConfig struct {
	ID       string        `json:"id"`
	Type     string        `json:"chartType"`
	Title    string        `json:"title"`
	XAxis    string        `json:"xAxis,omitempty"`
	YAxis    string        `json:"yAxis,omitempty"`
	Series   []ChartSeries `json:"series"`
	Colors   []string      `json:"colors,omitempty"`
	BoxStats []BoxSeries   `json:"boxStats,omitempty"`
}

// ChartSeries is a named sequence of points.
type ChartSeries struct {
	Name string       `json:"name"`
	Kind string       `json:"kind,omitempty"` // "line" or "bar" for trend charts
	Data []ChartPoint `json:"data"`
}

// ChartPoint is a single labeled value.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BoxSeries is a five-number summary for one box of a box plot.
type BoxSeries struct {
	Name  string      `json:"name"`
	Stats RatingStats `json:"stats"`
}

// ChartBuilder turns Views into chart configurations using the embedded
// catalog.
type ChartBuilder struct {
	catalog []ChartDefinition
}

// NewChartBuilder parses the embedded chart catalog.
func NewChartBuilder() (*ChartBuilder, error) {
	var cat chartCatalog
	if err := yaml.Unmarshal(chartCatalogYAML, &cat); err != nil {
		return nil, fmt.Errorf("parse chart catalog: %w", err)
	}
	if len(cat.Charts) == 0 {
		return nil, fmt.Errorf("chart catalog is empty")
	}
	return &ChartBuilder{catalog: cat.Charts}, nil
}

// Catalog returns the chart definitions in catalog order.
func (b *ChartBuilder) Catalog() []ChartDefinition {
	return b.catalog
}

// BuildAll builds every catalog chart for the view, in catalog order.
func (b *ChartBuilder) BuildAll(v *View) ([]ChartConfig, error) {
	configs := make([]ChartConfig, 0, len(b.catalog))
	for _, def := range b.catalog {
		cfg, err := b.Build(v, def.ID)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// Build builds one chart by catalog id. Unknown ids are an error.
func (b *ChartBuilder) Build(v *View, id string) (ChartConfig, error) {
	var def *ChartDefinition
	for i := range b.catalog {
		if b.catalog[i].ID == id {
			def = &b.catalog[i]
			break
		}
	}
	if def == nil {
		return ChartConfig{}, fmt.Errorf("unknown chart %q", id)
	}

	cfg := ChartConfig{ID: def.ID, Type: def.Type, Title: def.Title, Colors: def.Colors}

	switch def.ID {
	case "rating_histogram":
		cfg.XAxis = "Rating"
		cfg.YAxis = "Count"
		cfg.Series = []ChartSeries{{Name: "Ratings", Data: histogramPoints(v.Histogram)}}

	case "rating_by_type":
		cfg.XAxis = "Type"
		cfg.YAxis = "Rating"
		for _, t := range []dataset.ContentType{dataset.TypeMovie, dataset.TypeTVShow} {
			if stats, ok := v.StatsByType[t]; ok {
				cfg.BoxStats = append(cfg.BoxStats, BoxSeries{Name: string(t), Stats: stats})
			}
		}

	case "yearly_trends":
		cfg.XAxis = "Year"
		mean := ChartSeries{Name: "Average Rating", Kind: "line"}
		count := ChartSeries{Name: "Content Count", Kind: "bar"}
		for _, ys := range v.ByYear {
			label := strconv.Itoa(ys.Year)
			mean.Data = append(mean.Data, ChartPoint{Label: label, Value: ys.MeanRating})
			count.Data = append(count.Data, ChartPoint{Label: label, Value: float64(ys.Count)})
		}
		cfg.Series = []ChartSeries{mean, count}

	case "top_genres":
		limit := def.Limit
		if limit <= 0 {
			limit = len(v.GenreCounts)
		}
		cfg.XAxis = "Count"
		cfg.YAxis = "Genre"
		cfg.Series = []ChartSeries{{Name: "Genres", Data: genrePoints(v.TopGenres(limit))}}

	case "genre_treemap":
		cfg.Series = []ChartSeries{{Name: "Genres", Data: genrePoints(v.GenreCounts)}}

	default:
		return ChartConfig{}, fmt.Errorf("chart %q has no builder", id)
	}

	return cfg, nil
}

func histogramPoints(buckets []HistogramBucket) []ChartPoint {
	points := make([]ChartPoint, len(buckets))
	for i, b := range buckets {
		points[i] = ChartPoint{
			Label: strconv.FormatFloat(b.Low, 'f', 1, 64) + "–" + strconv.FormatFloat(b.High, 'f', 1, 64),
			Value: float64(b.Count),
		}
	}
	return points
}

func genrePoints(counts []GenreCount) []ChartPoint {
	points := make([]ChartPoint, len(counts))
	for i, gc := range counts {
		points[i] = ChartPoint{Label: gc.Genre, Value: float64(gc.Count)}
	}
	return points
}
