// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viktor-platform/scia-bridge/internal/api"
	"github.com/viktor-platform/scia-bridge/internal/artifacts"
	"github.com/viktor-platform/scia-bridge/internal/cache"
	"github.com/viktor-platform/scia-bridge/internal/config"
	"github.com/viktor-platform/scia-bridge/internal/jobs"
	bridgelog "github.com/viktor-platform/scia-bridge/internal/log"
	"github.com/viktor-platform/scia-bridge/internal/telemetry"
	"github.com/viktor-platform/scia-bridge/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	bridgelog.Configure(bridgelog.Config{
		Level:   "info",
		Service: "scia-bridge",
		Version: version.Version,
	})
	logger := bridgelog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
	}

	bridgelog.Configure(bridgelog.Config{
		Level:   cfg.LogLevel,
		Service: "scia-bridge",
		Version: version.Version,
	})

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		logger.Fatal().
			Err(err).
			Str("data_dir", cfg.DataDir).
			Msg("failed to create data dir")
	}

	tracer, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:      cfg.TracingEnabled,
		ServiceName:  "scia-bridge",
		Protocol:     cfg.OTLPProtocol,
		Endpoint:     cfg.OTLPEndpoint,
		SamplingRate: cfg.TraceSampleRatio,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "telemetry.init_failed").
			Msg("failed to initialise tracing")
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	store, err := jobs.Open(cfg.StoreBackend, cfg.StorePath())
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "store.open_failed").
			Str("backend", cfg.StoreBackend).
			Msg("failed to open job store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("store close failed")
		}
	}()

	manager, err := jobs.NewManager(ctx, store, jobs.ManagerOptions{
		DefaultTimeout: cfg.JobTimeout,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "jobs.recover_failed").
			Msg("failed to recover job state")
	}
	manager.Start(ctx)

	artifactStore, err := artifacts.NewStore(cfg.DataDir)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("failed to open artifact store")
	}

	viewCache, err := openCache(ctx, cfg)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "cache.open_failed").
			Str("backend", cfg.CacheBackend).
			Msg("failed to open view cache")
	}
	defer func() { _ = viewCache.Close() }()

	holder := config.NewHolder(cfg, *configPath)
	go func() {
		if err := holder.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn().Err(err).Msg("config watcher stopped")
		}
	}()

	server := api.New(api.Options{
		Config:    holder,
		Manager:   manager,
		Artifacts: artifactStore,
		Cache:     viewCache,
		DataDir:   cfg.DataDir,
	})

	httpServer := &http.Server{
		Addr:         cfg.Listen,
		Handler:      server.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	metricsServer := &http.Server{
		Addr:    cfg.MetricsListen,
		Handler: promhttp.Handler(),
	}
	go func() {
		logger.Info().
			Str("event", "metrics.listening").
			Str("addr", cfg.MetricsListen).
			Msg("metrics listener started")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics listener failed")
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("event", "startup").
			Str("version", version.Version).
			Str("commit", version.Commit).
			Str("addr", cfg.Listen).
			Str("store", cfg.StoreBackend).
			Msg("bridge daemon listening")
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Str("event", "shutdown.begin").Msg("signal received, draining")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown incomplete")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("metrics shutdown incomplete")
	}
	logger.Info().Str("event", "shutdown.complete").Msg("bridge daemon stopped")
}

func openCache(ctx context.Context, cfg *config.AppConfig) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		return cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.CacheMemory:
		return cache.NewMemory(0), nil
	default:
		return cache.Disabled{}, nil
	}
}
