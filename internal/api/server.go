// Package api wires the dashboard services behind an Echo HTTP server.
package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/streamscope/streamscope/internal/analytics"
	"github.com/streamscope/streamscope/internal/config"
	"github.com/streamscope/streamscope/internal/dataset"
	"github.com/streamscope/streamscope/internal/history"
	"github.com/streamscope/streamscope/internal/presets"
	"github.com/streamscope/streamscope/internal/session"
	"github.com/streamscope/streamscope/internal/websocket"
)

// Server handles HTTP requests for the StreamScope API.
type Server struct {
	echo   *echo.Echo
	db     *sql.DB
	hub    *websocket.Hub
	logger zerolog.Logger
	cfg    *config.Config

	ds           *dataset.Dataset
	chartBuilder *analytics.ChartBuilder
	sessions     *session.Manager

	historyService *history.Service
	presetService  *presets.Service

	historyHandlers *history.Handlers
	presetHandlers  *presets.Handlers
}

// NewServer creates a new API server instance over an already loaded
// dataset.
func NewServer(ds *dataset.Dataset, db *sql.DB, hub *websocket.Hub, cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	chartBuilder, err := analytics.NewChartBuilder()
	if err != nil {
		return nil, err
	}

	s := &Server{
		echo:         e,
		db:           db,
		hub:          hub,
		logger:       logger,
		cfg:          cfg,
		ds:           ds,
		chartBuilder: chartBuilder,
	}

	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	s.sessions = session.NewManager(ds, ttl, logger)

	s.historyService = history.NewService(db, logger)
	s.presetService = presets.NewService(db, logger)

	s.historyHandlers = history.NewHandlers(s.historyService)
	s.presetHandlers = presets.NewHandlers(s.presetService, s.historyService)
	s.presetHandlers.SetBroadcaster(hub)

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	// Request body size limit: criteria and preset payloads are small
	s.echo.Use(middleware.BodyLimit("256K"))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Skip compression for WebSocket
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"version":  config.Version,
		"dataset":  s.datasetName(),
		"records":  s.ds.Len(),
		"sessions": s.sessions.Count(),
		"clients":  s.hub.ClientCount(),
	})
}

// datasetName returns the configured display label, falling back to the
// source file name.
func (s *Server) datasetName() string {
	if s.cfg.Dataset.Name != "" {
		return s.cfg.Dataset.Name
	}
	return s.ds.Name
}
