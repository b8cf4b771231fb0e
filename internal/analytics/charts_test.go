package analytics

import (
	"testing"

	"github.com/streamscope/streamscope/internal/dataset"
)

func TestNewChartBuilder(t *testing.T) {
	b, err := NewChartBuilder()
	if err != nil {
		t.Fatalf("NewChartBuilder() error = %v", err)
	}
	if len(b.Catalog()) != 5 {
		t.Errorf("catalog size = %d, want 5", len(b.Catalog()))
	}
}

func TestChartBuilder_BuildAll(t *testing.T) {
	b, err := NewChartBuilder()
	if err != nil {
		t.Fatalf("NewChartBuilder() error = %v", err)
	}

	ds := testDataset()
	v := mustApply(t, ds, Unrestricted(ds.YearMin, ds.YearMax))

	configs, err := b.BuildAll(v)
	if err != nil {
		t.Fatalf("BuildAll() error = %v", err)
	}
	if len(configs) != len(b.Catalog()) {
		t.Errorf("BuildAll() returned %d configs, want %d", len(configs), len(b.Catalog()))
	}

	for i, def := range b.Catalog() {
		if configs[i].ID != def.ID {
			t.Errorf("configs[%d].ID = %q, want %q (catalog order)", i, configs[i].ID, def.ID)
		}
		if configs[i].Title != def.Title {
			t.Errorf("configs[%d].Title = %q, want %q", i, configs[i].Title, def.Title)
		}
	}
}

func TestChartBuilder_Build_Histogram(t *testing.T) {
	b, _ := NewChartBuilder()
	ds := testDataset()
	v := mustApply(t, ds, Unrestricted(ds.YearMin, ds.YearMax))

	cfg, err := b.Build(v, "rating_histogram")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if cfg.Type != "histogram" {
		t.Errorf("Type = %q, want histogram", cfg.Type)
	}
	if len(cfg.Series) != 1 || len(cfg.Series[0].Data) != 10 {
		t.Fatalf("histogram series shape = %v, want 1 series of 10 points", cfg.Series)
	}
}

func TestChartBuilder_Build_YearlyTrends(t *testing.T) {
	b, _ := NewChartBuilder()
	ds := testDataset()
	v := mustApply(t, ds, Unrestricted(ds.YearMin, ds.YearMax))

	cfg, err := b.Build(v, "yearly_trends")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(cfg.Series) != 2 {
		t.Fatalf("trend series = %d, want 2 (line + bar)", len(cfg.Series))
	}
	if cfg.Series[0].Kind != "line" || cfg.Series[1].Kind != "bar" {
		t.Errorf("series kinds = %q/%q, want line/bar", cfg.Series[0].Kind, cfg.Series[1].Kind)
	}
	if len(cfg.Series[0].Data) != len(v.ByYear) {
		t.Errorf("trend points = %d, want %d", len(cfg.Series[0].Data), len(v.ByYear))
	}
}

func TestChartBuilder_Build_BoxStats(t *testing.T) {
	b, _ := NewChartBuilder()
	ds := testDataset()
	v := mustApply(t, ds, Unrestricted(ds.YearMin, ds.YearMax))

	cfg, err := b.Build(v, "rating_by_type")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(cfg.BoxStats) != 2 {
		t.Fatalf("BoxStats = %d, want 2", len(cfg.BoxStats))
	}
	if cfg.BoxStats[0].Name != string(dataset.TypeMovie) {
		t.Errorf("BoxStats[0].Name = %q, want Movie first", cfg.BoxStats[0].Name)
	}
}

func TestChartBuilder_Build_TopGenresLimit(t *testing.T) {
	b, _ := NewChartBuilder()

	records := make([]dataset.Record, 0, 12)
	genres := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	for _, g := range genres {
		records = append(records, dataset.NewRecord(dataset.TypeMovie, []string{g}, 2020, 3.0))
	}
	ds := &dataset.Dataset{Records: records, YearMin: 2020, YearMax: 2020}
	v := mustApply(t, ds, Unrestricted(2020, 2020))

	cfg, err := b.Build(v, "top_genres")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(cfg.Series[0].Data) != 10 {
		t.Errorf("top_genres points = %d, want 10 (catalog limit)", len(cfg.Series[0].Data))
	}
}

func TestChartBuilder_Build_UnknownChart(t *testing.T) {
	b, _ := NewChartBuilder()
	ds := testDataset()
	v := mustApply(t, ds, Unrestricted(ds.YearMin, ds.YearMax))

	if _, err := b.Build(v, "pie_of_doom"); err == nil {
		t.Error("Build() expected error for unknown chart id")
	}
}
