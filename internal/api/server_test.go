package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/streamscope/streamscope/internal/analytics"
	"github.com/streamscope/streamscope/internal/config"
	"github.com/streamscope/streamscope/internal/dataset"
	"github.com/streamscope/streamscope/internal/presets"
	"github.com/streamscope/streamscope/internal/testutil"
	"github.com/streamscope/streamscope/internal/websocket"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	ds := &dataset.Dataset{
		Name: "catalog",
		Records: []dataset.Record{
			dataset.NewRecord(dataset.TypeMovie, []string{"Drama"}, 2020, 4.0),
			dataset.NewRecord(dataset.TypeTVShow, []string{"Drama", "Comedy"}, 2021, 3.0),
			dataset.NewRecord(dataset.TypeMovie, []string{"Action"}, 2019, 2.0),
		},
		YearMin: 2019,
		YearMax: 2021,
		Genres:  []string{"Action", "Comedy", "Drama"},
		Types:   []dataset.ContentType{dataset.TypeMovie, dataset.TypeTVShow},
	}

	tdb := testutil.NewTestDB(t)
	hub := websocket.NewHub()
	go hub.Run()

	cfg := &config.Config{}
	cfg.Session.TTLMinutes = 60

	server, err := NewServer(ds, tdb.Conn, hub, cfg, zerolog.New(zerolog.NewTestWriter(t)))
	require.NoError(t, err)
	return server
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := setupTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_GetDataset(t *testing.T) {
	s := setupTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/dataset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DatasetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "catalog", resp.Name)
	require.Equal(t, 3, resp.Records)
	require.Equal(t, 2019, resp.YearMin)
	require.Equal(t, 2021, resp.YearMax)
	require.Equal(t, []string{"Action", "Comedy", "Drama"}, resp.Genres)
}

func TestServer_GetSummary(t *testing.T) {
	s := setupTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/summary?types=Movie", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view analytics.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, 2, view.Count)
	require.NotNil(t, view.MeanRating)
	require.InDelta(t, 3.0, *view.MeanRating, 1e-9)
}

func TestServer_GetSummary_BadParams(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/summary?types=Documentary", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/summary?yearMin=2025&yearMax=2000", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func createTestSession(t *testing.T, s *Server) SessionResponse {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var sess SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.ID)
	return sess
}

func TestServer_SessionLifecycle(t *testing.T) {
	s := setupTestServer(t)
	sess := createTestSession(t, s)
	require.Equal(t, 3, sess.Count)

	body := `{"types":["Movie"],"yearRange":{"min":2019,"max":2021}}`
	rec := doRequest(t, s, http.MethodPut, "/api/v1/sessions/"+sess.ID+"/criteria", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, 2, updated.Count)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view analytics.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, 2, view.Count)
}

func TestServer_CriteriaDefaultsYearRange(t *testing.T) {
	s := setupTestServer(t)
	sess := createTestSession(t, s)

	// No yearRange in the body: bounds default to the dataset's, so a
	// type filter alone must not blank the view.
	rec := doRequest(t, s, http.MethodPut, "/api/v1/sessions/"+sess.ID+"/criteria", `{"types":["Movie"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, 2, updated.Count)
	require.Equal(t, 2019, updated.Criteria.YearRange.Min)
	require.Equal(t, 2021, updated.Criteria.YearRange.Max)
}

func TestServer_InvalidCriteriaRetainsView(t *testing.T) {
	s := setupTestServer(t)
	sess := createTestSession(t, s)

	body := `{"yearRange":{"min":2025,"max":2000}}`
	rec := doRequest(t, s, http.MethodPut, "/api/v1/sessions/"+sess.ID+"/criteria", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view analytics.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, 3, view.Count, "previous valid view should be retained")
}

func TestServer_SessionNotFound(t *testing.T) {
	s := setupTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/sessions/unknown/summary", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_SessionRecords(t *testing.T) {
	s := setupTestServer(t)
	sess := createTestSession(t, s)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/records?page=1&pageSize=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecordsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.TotalCount)
	require.Len(t, resp.Items, 2)
	// rating-descending ordering
	require.Equal(t, 4.0, resp.Items[0].Rating)
	require.Equal(t, 3.0, resp.Items[1].Rating)
}

func TestServer_SessionCharts(t *testing.T) {
	s := setupTestServer(t)
	sess := createTestSession(t, s)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/charts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var configs []analytics.ChartConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &configs))
	require.Len(t, configs, 5)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/charts?id=rating_histogram", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/charts?id=nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Export(t *testing.T) {
	s := setupTestServer(t)
	sess := createTestSession(t, s)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4) // header + 3 records
	require.Equal(t, "Type,Genre(s),Year,Rating (Out of 5)", strings.TrimSpace(lines[0]))

	// export shows up in the activity log
	rec = doRequest(t, s, http.MethodGet, "/api/v1/history?eventType=exported", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"totalCount":1`)
}

func TestServer_Presets(t *testing.T) {
	s := setupTestServer(t)
	sess := createTestSession(t, s)

	body := `{"name":"Movies Only","criteria":{"types":["Movie"],"yearRange":{"min":2019,"max":2021}}}`
	rec := doRequest(t, s, http.MethodPost, "/api/v1/presets", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var p presets.Preset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.NotEmpty(t, p.ID)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/presets/"+p.ID+"/apply?session="+sess.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var applied SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	require.Equal(t, 2, applied.Count)

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/presets/"+p.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/presets/"+p.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_PresetDuplicateName(t *testing.T) {
	s := setupTestServer(t)

	body := `{"name":"Dup","criteria":{"yearRange":{"min":2019,"max":2021}}}`
	rec := doRequest(t, s, http.MethodPost, "/api/v1/presets", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/presets", body)
	require.Equal(t, http.StatusConflict, rec.Code)
}
