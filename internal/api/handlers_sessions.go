package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/streamscope/streamscope/internal/analytics"
	"github.com/streamscope/streamscope/internal/dataset"
	"github.com/streamscope/streamscope/internal/history"
	"github.com/streamscope/streamscope/internal/presets"
	"github.com/streamscope/streamscope/internal/session"
	"github.com/streamscope/streamscope/internal/websocket"
)

// SessionResponse is the session state returned to the UI.
type SessionResponse struct {
	ID       string             `json:"id"`
	Criteria analytics.Criteria `json:"criteria"`
	Count    int                `json:"count"`
}

func sessionResponse(sess session.Session) SessionResponse {
	return SessionResponse{
		ID:       sess.ID,
		Criteria: sess.Criteria,
		Count:    sess.View().Count,
	}
}

// createSession starts a new session with the full-dataset view.
// POST /api/v1/sessions
func (s *Server) createSession(c echo.Context) error {
	sess, err := s.sessions.Create()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, sessionResponse(sess))
}

// getSession returns session state.
// GET /api/v1/sessions/:id
func (s *Server) getSession(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse(sess))
}

// criteriaRequest is the criteria update body. Year bounds are pointers so
// an omitted bound falls back to the dataset's bounds instead of zero, the
// same defaulting criteriaFromQuery applies.
type criteriaRequest struct {
	Types     []dataset.ContentType `json:"types"`
	Genres    []string              `json:"genres"`
	YearRange struct {
		Min *int `json:"min"`
		Max *int `json:"max"`
	} `json:"yearRange"`
}

func (s *Server) criteriaFromBody(c echo.Context) (analytics.Criteria, error) {
	var req criteriaRequest
	if err := c.Bind(&req); err != nil {
		return analytics.Criteria{}, err
	}

	criteria := analytics.Unrestricted(s.ds.YearMin, s.ds.YearMax)
	criteria.Types = req.Types
	criteria.Genres = req.Genres
	if req.YearRange.Min != nil {
		criteria.YearRange.Min = *req.YearRange.Min
	}
	if req.YearRange.Max != nil {
		criteria.YearRange.Max = *req.YearRange.Max
	}
	return criteria, nil
}

// setSessionCriteria applies new filter criteria to a session. Invalid
// criteria return 422 and the session keeps its previous valid view.
// PUT /api/v1/sessions/:id/criteria
func (s *Server) setSessionCriteria(c echo.Context) error {
	criteria, err := s.criteriaFromBody(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sess, err := s.sessions.SetCriteria(c.Param("id"), criteria)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, analytics.ErrInvalidCriteria):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	_ = s.hub.Broadcast(websocket.EventSessionFiltered, map[string]any{
		"sessionId": sess.ID,
		"count":     sess.View().Count,
	})

	return c.JSON(http.StatusOK, sessionResponse(sess))
}

// getSessionSummary returns the session's full view summary.
// GET /api/v1/sessions/:id/summary
func (s *Server) getSessionSummary(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess.View())
}

// getSessionCharts returns render-ready chart configs for the session view.
// GET /api/v1/sessions/:id/charts
func (s *Server) getSessionCharts(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	if id := c.QueryParam("id"); id != "" {
		cfg, err := s.chartBuilder.Build(sess.View(), id)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return c.JSON(http.StatusOK, cfg)
	}

	configs, err := s.chartBuilder.BuildAll(sess.View())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, configs)
}

// RecordsResponse is one page of the filtered raw-data table.
type RecordsResponse struct {
	Items      []dataset.Record `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalCount int              `json:"totalCount"`
}

// getSessionRecords returns the filtered subset, rating-descending,
// paginated.
// GET /api/v1/sessions/:id/records
func (s *Server) getSessionRecords(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	page := 1
	if p := c.QueryParam("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	pageSize := 50
	if ps := c.QueryParam("pageSize"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 500 {
			pageSize = v
		}
	}

	records := sess.View().Records()
	total := len(records)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, RecordsResponse{
		Items:      records[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	})
}

// exportSession streams the filtered subset as CSV using the loader's
// schema, so re-importing the download reproduces the same view.
// GET /api/v1/sessions/:id/export
func (s *Server) exportSession(c echo.Context) error {
	sess, err := s.lookupSession(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	records := sess.View().Records()
	if err := dataset.WriteCSV(&buf, records); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if data, err := history.ToJSON(history.ExportData{
		SessionID: sess.ID,
		Records:   len(records),
		Dataset:   s.datasetName(),
	}); err == nil {
		_, _ = s.historyService.Record(c.Request().Context(), history.CreateInput{
			EventType: history.EventTypeExported,
			Data:      data,
		})
	}

	_ = s.hub.Broadcast(websocket.EventExportCompleted, map[string]any{
		"sessionId": sess.ID,
		"records":   len(records),
	})

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="filtered_content.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// applyPreset applies a saved preset's criteria to a session.
// POST /api/v1/presets/:id/apply?session=<sessionID>
func (s *Server) applyPreset(c echo.Context) error {
	sessionID := c.QueryParam("session")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session query parameter is required")
	}

	p, err := s.presetService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, presets.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	sess, err := s.sessions.SetCriteria(sessionID, p.Criteria)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, analytics.ErrInvalidCriteria):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if data, err := history.ToJSON(history.PresetData{PresetID: p.ID, Name: p.Name}); err == nil {
		_, _ = s.historyService.Record(c.Request().Context(), history.CreateInput{
			EventType: history.EventTypePresetApplied,
			Data:      data,
		})
	}

	return c.JSON(http.StatusOK, sessionResponse(sess))
}

// lookupSession resolves the :id path parameter, translating lookup
// failures into HTTP errors.
func (s *Server) lookupSession(c echo.Context) (session.Session, error) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return session.Session{}, echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return session.Session{}, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return sess, nil
}
