package presets

import (
	"errors"
	"time"

	"github.com/streamscope/streamscope/internal/analytics"
)

// Service-level sentinel errors.
var (
	ErrNotFound      = errors.New("preset not found")
	ErrDuplicateName = errors.New("preset name already exists")
	ErrEmptyName     = errors.New("preset name is required")
)

// Preset is a named, persisted filter criteria.
type Preset struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Criteria  analytics.Criteria `json:"criteria"`
	CreatedAt time.Time          `json:"createdAt"`
}

// CreateInput contains fields for saving a preset.
type CreateInput struct {
	Name     string             `json:"name"`
	Criteria analytics.Criteria `json:"criteria"`
}
