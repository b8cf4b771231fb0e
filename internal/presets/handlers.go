package presets

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/streamscope/streamscope/internal/analytics"
	"github.com/streamscope/streamscope/internal/history"
)

// Broadcaster pushes preset events to connected clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// Handlers provides HTTP handlers for preset operations.
type Handlers struct {
	service     *Service
	history     *history.Service
	broadcaster Broadcaster
}

// NewHandlers creates a new preset handlers instance.
func NewHandlers(service *Service, historyService *history.Service) *Handlers {
	return &Handlers{service: service, history: historyService}
}

// SetBroadcaster enables WebSocket event notifications.
func (h *Handlers) SetBroadcaster(b Broadcaster) {
	h.broadcaster = b
}

// RegisterRoutes registers preset routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
}

// List returns all saved presets.
// GET /api/v1/presets
func (h *Handlers) List(c echo.Context) error {
	items, err := h.service.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// Create saves a new preset.
// POST /api/v1/presets
func (h *Handlers) Create(c echo.Context) error {
	var input CreateInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.service.Create(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyName):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrDuplicateName):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, analytics.ErrInvalidCriteria):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	h.recordAndNotify(c, history.EventTypePresetSaved, "preset:saved", p)
	return c.JSON(http.StatusCreated, p)
}

// Get returns a single preset.
// GET /api/v1/presets/:id
func (h *Handlers) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a preset.
// DELETE /api/v1/presets/:id
func (h *Handlers) Delete(c echo.Context) error {
	id := c.Param("id")
	p, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.recordAndNotify(c, history.EventTypePresetDeleted, "preset:deleted", p)
	return c.NoContent(http.StatusNoContent)
}

// recordAndNotify logs a preset event and broadcasts it. Both are best
// effort: failures never fail the request that triggered them.
func (h *Handlers) recordAndNotify(c echo.Context, event history.EventType, msgType string, p *Preset) {
	if h.history != nil {
		data, err := history.ToJSON(history.PresetData{PresetID: p.ID, Name: p.Name})
		if err == nil {
			_, _ = h.history.Record(c.Request().Context(), history.CreateInput{EventType: event, Data: data})
		}
	}
	if h.broadcaster != nil {
		_ = h.broadcaster.Broadcast(msgType, map[string]any{"id": p.ID, "name": p.Name})
	}
}
