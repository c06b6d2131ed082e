// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/viktor-platform/scia-bridge/internal/analysis"
	"github.com/viktor-platform/scia-bridge/internal/config"
	bridgelog "github.com/viktor-platform/scia-bridge/internal/log"
	"github.com/viktor-platform/scia-bridge/internal/version"
	"github.com/viktor-platform/scia-bridge/internal/worker"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	bridgelog.Configure(bridgelog.Config{
		Level:   config.ParseString("BRIDGE_LOG_LEVEL", "info"),
		Service: "scia-worker",
		Version: version.Version,
	})
	logger := bridgelog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorker()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Msg("failed to load worker configuration")
	}

	var runner analysis.Runner
	if cfg.EngineCommand != "" {
		runner = &analysis.ExecRunner{
			Command: cfg.EngineCommand,
			Args:    cfg.EngineArgs,
		}
		logger.Info().
			Str("event", "engine.configured").
			Str("command", cfg.EngineCommand).
			Msg("using external engine")
	} else {
		runner = analysis.StaticRunner{}
		logger.Warn().
			Str("event", "engine.fallback").
			Msg("no engine command configured, using the built-in static estimate")
	}

	client := worker.NewClient(cfg.APIBase, cfg.WorkerToken, cfg.WorkerID, cfg.LeaseWait)
	pool, err := worker.NewPool(worker.Options{
		Client:       client,
		Runner:       runner,
		WorkerID:     cfg.WorkerID,
		Concurrency:  cfg.Concurrency,
		PollInterval: cfg.PollInterval,
		ScratchDir:   cfg.ScratchDir,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("failed to build worker pool")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("api", cfg.APIBase).
		Str("worker_id", cfg.WorkerID).
		Msg("scia worker starting")

	if err := pool.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("worker pool exited with error")
	}
	client.CloseIdleConnections()
	logger.Info().Str("event", "shutdown.complete").Msg("scia worker stopped")
}
