package history

import "encoding/json"

// EventType represents the type of activity event.
type EventType string

const (
	EventTypeDatasetLoaded EventType = "dataset_loaded"
	EventTypeExported      EventType = "exported"
	EventTypePresetSaved   EventType = "preset_saved"
	EventTypePresetDeleted EventType = "preset_deleted"
	EventTypePresetApplied EventType = "preset_applied"
)

// Entry represents one activity log entry.
type Entry struct {
	ID        int64          `json:"id"`
	EventType EventType      `json:"eventType"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt string         `json:"createdAt"`
}

// CreateInput contains fields for creating an entry.
type CreateInput struct {
	EventType EventType
	Data      map[string]any
}

// ListOptions contains options for listing the activity log.
type ListOptions struct {
	EventType string
	Page      int
	PageSize  int
}

// ListResponse contains paginated activity results.
type ListResponse struct {
	Items      []*Entry `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalCount int64    `json:"totalCount"`
	TotalPages int      `json:"totalPages"`
}

// ExportData describes a CSV export event.
type ExportData struct {
	SessionID string `json:"sessionId,omitempty"`
	Records   int    `json:"records"`
	Dataset   string `json:"dataset,omitempty"`
}

// DatasetLoadedData describes a dataset load event.
type DatasetLoadedData struct {
	Path        string `json:"path"`
	Records     int    `json:"records"`
	DroppedRows int    `json:"droppedRows"`
}

// PresetData describes preset save/delete/apply events.
type PresetData struct {
	PresetID string `json:"presetId"`
	Name     string `json:"name,omitempty"`
}

// ToJSON converts a data struct to a JSON map.
func ToJSON(v any) (map[string]any, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]any
	if err := json.Unmarshal(bytes, &result); err != nil {
		return nil, err
	}
	return result, nil
}
