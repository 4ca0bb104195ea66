package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jordan/content-calendar/internal/config"
	"github.com/jordan/content-calendar/internal/genservice"
	"github.com/jordan/content-calendar/internal/jobs"
	"github.com/jordan/content-calendar/internal/pipeline"
	"github.com/jordan/content-calendar/internal/store"
)

// loadConfig merges the optional config file with environment variables and
// validates the result.
func loadConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// connectStore opens the durable store when a database URL is configured.
// The service runs without one; connection failures degrade to the
// in-memory path with a warning instead of refusing to start.
func connectStore(ctx context.Context, cfg *config.Config) *store.DB {
	if cfg.DatabaseURL == "" {
		log.Println("No DATABASE_URL configured; running without durable store")
		return nil
	}
	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("Warning: database connection failed, running without durable store: %v", err)
		return nil
	}
	return db
}

// buildRunner wires the generation backend and persistence gateway into a
// job runner. db may be nil.
func buildRunner(ctx context.Context, cfg *config.Config, db *store.DB, registry jobs.Registry) (*pipeline.Runner, error) {
	genCfg := genservice.Config{
		Provider:     genservice.Provider(cfg.GenerationProvider),
		BaseURL:      cfg.GenerationServiceURL,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
	}
	if cfg.GenerationTimeoutMinutes > 0 {
		genCfg.Timeout = time.Duration(cfg.GenerationTimeoutMinutes) * time.Minute
	}

	gen, err := genservice.New(ctx, genCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation backend: %w", err)
	}

	var rows store.Rows
	if db != nil {
		rows = db
	}
	gateway := store.NewGateway(rows, nil)

	return pipeline.NewRunner(gateway, gen, registry, nil, nil), nil
}
