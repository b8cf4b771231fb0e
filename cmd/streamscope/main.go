package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/streamscope/streamscope/internal/api"
	"github.com/streamscope/streamscope/internal/config"
	"github.com/streamscope/streamscope/internal/database"
	"github.com/streamscope/streamscope/internal/dataset"
	"github.com/streamscope/streamscope/internal/history"
	"github.com/streamscope/streamscope/internal/logger"
	"github.com/streamscope/streamscope/internal/websocket"
)

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	datasetPath := flag.String("dataset", "", "Path to catalog CSV (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if *datasetPath != "" {
		cfg.Dataset.Path = *datasetPath
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting StreamScope")

	// A dataset that fails to load is fatal: no partial dashboard is served.
	loader := dataset.NewLoader(log.Logger)
	ds, err := loader.Load(cfg.Dataset.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Dataset.Path).Msg("failed to load dataset")
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	hub := websocket.NewHub()
	go hub.Run()

	server, err := api.NewServer(ds, db.Conn(), hub, cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create API server")
	}

	historyService := history.NewService(db.Conn(), log.Logger)
	if data, err := history.ToJSON(history.DatasetLoadedData{
		Path:        cfg.Dataset.Path,
		Records:     ds.Len(),
		DroppedRows: ds.DroppedRows,
	}); err == nil {
		if _, err := historyService.Record(context.Background(), history.CreateInput{
			EventType: history.EventTypeDatasetLoaded,
			Data:      data,
		}); err != nil {
			log.Warn().Err(err).Msg("failed to record dataset load")
		}
	}

	go func() {
		addr := cfg.Server.Address()
		log.Info().Str("address", addr).Msg("HTTP server listening")
		if err := server.Start(addr); err != nil {
			log.Info().Msg("server stopped")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
}
