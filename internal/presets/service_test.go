package presets

import (
	"context"
	"errors"
	"testing"

	"github.com/streamscope/streamscope/internal/analytics"
	"github.com/streamscope/streamscope/internal/dataset"
	"github.com/streamscope/streamscope/internal/testutil"
)

func testCriteria() analytics.Criteria {
	return analytics.Criteria{
		Types:     []dataset.ContentType{dataset.TypeMovie},
		Genres:    []string{"Drama"},
		YearRange: analytics.YearRange{Min: 2000, Max: 2020},
	}
}

func TestPresetService_Create(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	p, err := service.Create(ctx, CreateInput{Name: "Recent Dramas", Criteria: testCriteria()})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.ID == "" {
		t.Error("Create() ID is empty")
	}
	if p.Name != "Recent Dramas" {
		t.Errorf("Name = %q, want %q", p.Name, "Recent Dramas")
	}

	got, err := service.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Criteria.YearRange != (analytics.YearRange{Min: 2000, Max: 2020}) {
		t.Errorf("round-tripped YearRange = %+v, want {2000 2020}", got.Criteria.YearRange)
	}
	if len(got.Criteria.Types) != 1 || got.Criteria.Types[0] != dataset.TypeMovie {
		t.Errorf("round-tripped Types = %v, want [Movie]", got.Criteria.Types)
	}
}

func TestPresetService_CreateValidation(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	if _, err := service.Create(ctx, CreateInput{Name: "  ", Criteria: testCriteria()}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Create(blank name) error = %v, want ErrEmptyName", err)
	}

	bad := testCriteria()
	bad.YearRange = analytics.YearRange{Min: 2020, Max: 2000}
	if _, err := service.Create(ctx, CreateInput{Name: "bad", Criteria: bad}); !errors.Is(err, analytics.ErrInvalidCriteria) {
		t.Errorf("Create(invalid criteria) error = %v, want ErrInvalidCriteria", err)
	}
}

func TestPresetService_DuplicateName(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	if _, err := service.Create(ctx, CreateInput{Name: "Favorites", Criteria: testCriteria()}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := service.Create(ctx, CreateInput{Name: "Favorites", Criteria: testCriteria()}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Create(duplicate) error = %v, want ErrDuplicateName", err)
	}
}

func TestPresetService_ListOrderedByName(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	for _, name := range []string{"Zebra", "Alpha", "Mid"} {
		if _, err := service.Create(ctx, CreateInput{Name: name, Criteria: testCriteria()}); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	items, err := service.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("List() length = %d, want 3", len(items))
	}
	want := []string{"Alpha", "Mid", "Zebra"}
	for i, name := range want {
		if items[i].Name != name {
			t.Errorf("List()[%d].Name = %q, want %q", i, items[i].Name, name)
		}
	}
}

func TestPresetService_Delete(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	service := NewService(tdb.Conn, tdb.Logger)
	ctx := context.Background()

	p, err := service.Create(ctx, CreateInput{Name: "Temp", Criteria: testCriteria()})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := service.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := service.Get(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
	if err := service.Delete(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}
