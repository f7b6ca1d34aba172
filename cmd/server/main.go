// Package main provides the standalone symptomscope API server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/symptomscope/symptomscope/internal/api"
	"github.com/symptomscope/symptomscope/internal/config"
	"github.com/symptomscope/symptomscope/internal/diagnose"
	"github.com/symptomscope/symptomscope/internal/llm"
)

func main() {
	var (
		addr       = flag.String("addr", ":"+getEnv("PORT", "8080"), "Listen address")
		configPath = flag.String("config", os.Getenv("SYMPTOMSCOPE_CONFIG"), "Path to YAML config file")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	client, err := llm.New(cfg)
	if err != nil {
		// Configuration problems are an operator concern; the diagnosis
		// flow itself keeps serving the offline fallback.
		logger.Warn("provider not configured, all requests will serve fallback", "error", err)
	}

	srv := &http.Server{
		Addr: *addr,
		Handler: api.NewServer(api.Config{
			Diagnoser: diagnose.NewService(client, logger),
			Provider:  cfg,
			Logger:    logger,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", *addr, "provider", cfg.Provider)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server failed", "error", err)
		os.Exit(1)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
