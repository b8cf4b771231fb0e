package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/streamscope/streamscope/internal/analytics"
	"github.com/streamscope/streamscope/internal/dataset"
)

// DatasetResponse describes the loaded catalog for the UI: filter widget
// vocabularies plus load diagnostics.
type DatasetResponse struct {
	Name        string                `json:"name"`
	Records     int                   `json:"records"`
	DroppedRows int                   `json:"droppedRows"`
	YearMin     int                   `json:"yearMin"`
	YearMax     int                   `json:"yearMax"`
	Types       []dataset.ContentType `json:"types"`
	Genres      []string              `json:"genres"`
}

// getDataset returns dataset metadata.
// GET /api/v1/dataset
func (s *Server) getDataset(c echo.Context) error {
	return c.JSON(http.StatusOK, DatasetResponse{
		Name:        s.datasetName(),
		Records:     s.ds.Len(),
		DroppedRows: s.ds.DroppedRows,
		YearMin:     s.ds.YearMin,
		YearMax:     s.ds.YearMax,
		Types:       s.ds.Types,
		Genres:      s.ds.Genres,
	})
}

// getSummary computes a one-shot view from query parameters, for clients
// that do not hold a session.
// GET /api/v1/summary?types=Movie&genres=Drama,Comedy&yearMin=2000&yearMax=2020
func (s *Server) getSummary(c echo.Context) error {
	criteria, err := s.criteriaFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := analytics.Apply(s.ds, criteria)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidCriteria) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, view)
}

// criteriaFromQuery parses filter criteria from query parameters. Missing
// year bounds default to the dataset's bounds.
func (s *Server) criteriaFromQuery(c echo.Context) (analytics.Criteria, error) {
	criteria := analytics.Unrestricted(s.ds.YearMin, s.ds.YearMax)

	if raw := c.QueryParam("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			ct, ok := dataset.ParseContentType(t)
			if !ok {
				return analytics.Criteria{}, errors.New("unknown type " + strconv.Quote(t))
			}
			criteria.Types = append(criteria.Types, ct)
		}
	}

	if raw := c.QueryParam("genres"); raw != "" {
		criteria.Genres = dataset.SplitGenres(raw)
	}

	if raw := c.QueryParam("yearMin"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return analytics.Criteria{}, errors.New("yearMin must be an integer")
		}
		criteria.YearRange.Min = v
	}

	if raw := c.QueryParam("yearMax"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return analytics.Criteria{}, errors.New("yearMax must be an integer")
		}
		criteria.YearRange.Max = v
	}

	return criteria, nil
}
