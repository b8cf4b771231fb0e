// Package history keeps a persisted log of notable dashboard activity:
// dataset loads, exports, and preset changes.
package history

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rs/zerolog"
)

// Service provides activity log functionality.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a new history service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// Record creates a new activity entry. Logging failures are reported to the
// caller but are never fatal to the action being logged.
func (s *Service) Record(ctx context.Context, input CreateInput) (*Entry, error) {
	var dataJSON sql.NullString
	if input.Data != nil {
		bytes, err := json.Marshal(input.Data)
		if err != nil {
			return nil, err
		}
		dataJSON = sql.NullString{String: string(bytes), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO history (event_type, data) VALUES (?, ?)`,
		string(input.EventType), dataJSON,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, event_type, data, created_at FROM history WHERE id = ?`, id)
	return scanEntry(row)
}

// List lists activity entries with pagination and an optional event-type
// filter, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 50
	}
	if opts.PageSize > 100 {
		opts.PageSize = 100
	}

	offset := (opts.Page - 1) * opts.PageSize

	var rows *sql.Rows
	var err error
	var totalCount int64

	if opts.EventType != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, event_type, data, created_at FROM history
			 WHERE event_type = ? ORDER BY id DESC LIMIT ? OFFSET ?`,
			opts.EventType, opts.PageSize, offset)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM history WHERE event_type = ?`,
			opts.EventType).Scan(&totalCount); err != nil {
			return nil, err
		}
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, event_type, data, created_at FROM history
			 ORDER BY id DESC LIMIT ? OFFSET ?`,
			opts.PageSize, offset)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM history`).Scan(&totalCount); err != nil {
			return nil, err
		}
	}

	entries := make([]*Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int((totalCount + int64(opts.PageSize) - 1) / int64(opts.PageSize))
	return &ListResponse{
		Items:      entries,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// DeleteAll clears the activity log.
func (s *Service) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	if err == nil {
		s.logger.Info().Msg("activity log cleared")
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var eventType string
	var dataJSON sql.NullString
	if err := row.Scan(&entry.ID, &eventType, &dataJSON, &entry.CreatedAt); err != nil {
		return nil, err
	}
	entry.EventType = EventType(eventType)
	if dataJSON.Valid && dataJSON.String != "" {
		if err := json.Unmarshal([]byte(dataJSON.String), &entry.Data); err != nil {
			return nil, err
		}
	}
	return &entry, nil
}
