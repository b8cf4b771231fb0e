// Package presets persists named filter criteria so users can save and
// re-apply common dashboard views.
package presets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service provides preset management backed by SQLite.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a preset service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "presets").Logger(),
	}
}

// Create saves a new preset. The criteria are validated before persisting so
// a stored preset can always be applied.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Preset, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := input.Criteria.Validate(); err != nil {
		return nil, err
	}

	criteriaJSON, err := json.Marshal(input.Criteria)
	if err != nil {
		return nil, err
	}

	p := &Preset{
		ID:        uuid.NewString(),
		Name:      name,
		Criteria:  input.Criteria,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO presets (id, name, criteria, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, string(criteriaJSON), p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}

	s.logger.Info().Str("presetID", p.ID).Str("name", p.Name).Msg("preset saved")
	return p, nil
}

// Get returns a preset by ID.
func (s *Service) Get(ctx context.Context, id string) (*Preset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, criteria, created_at FROM presets WHERE id = ?`, id)
	return scanPreset(row)
}

// List returns all presets ordered by name.
func (s *Service) List(ctx context.Context) ([]*Preset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, criteria, created_at FROM presets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Preset, 0)
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a preset by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	s.logger.Info().Str("presetID", id).Msg("preset deleted")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row rowScanner) (*Preset, error) {
	var p Preset
	var criteriaJSON string
	err := row.Scan(&p.ID, &p.Name, &criteriaJSON, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(criteriaJSON), &p.Criteria); err != nil {
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures in the error text.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
