package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jordan/content-calendar/internal/config"
	"github.com/jordan/content-calendar/internal/jobs"
	"github.com/jordan/content-calendar/internal/server"
)

var (
	serveConfigPath string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the generation job endpoints and the calendar read surface.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by environment variables)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.Port == 0 {
		cfg.Port = config.DefaultPort
	}

	ctx := context.Background()
	db := connectStore(ctx, cfg)

	registry := jobs.NewMemoryRegistry()
	runner, err := buildRunner(ctx, cfg, db, registry)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return fmt.Errorf("failed to create server: %w", err)
	}

	srv := server.New(server.Config{Port: cfg.Port}, registry, jobs.NewDispatcher(), runner, db)
	return srv.Start()
}
