// Package main is the cubemap API server: it loads the cube models, opens
// DuckDB, and serves the cube endpoints over HTTP.
package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"cubemap/internal/api"
	"cubemap/internal/config"
	"cubemap/internal/engine"
	"cubemap/internal/middleware"
	"cubemap/internal/model"
	"cubemap/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	cubes, err := model.LoadDir(cfg.ModelDir)
	if err != nil {
		return err
	}
	logger.Info("models loaded", "dir", cfg.ModelDir, "cubes", len(cubes))

	// An empty DBPath opens an in-memory database, useful for plan-only
	// deployments seeded over SQL later.
	db, err := sql.Open("duckdb", cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	exec := engine.NewExecutor(db, logger)
	ws, err := service.New(cubes, cfg.MapperConfig(), exec, logger)
	if err != nil {
		return err
	}

	handler := api.NewHandler(ws, logger)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Mount("/", handler.Routes(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("listening", "addr", cfg.ListenAddr)
	return server.ListenAndServe()
}
