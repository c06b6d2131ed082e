// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkerConfig is the resolved scia-worker configuration. The worker is
// env-only; it carries no config file.
type WorkerConfig struct {
	APIBase     string
	WorkerToken string
	WorkerID    string

	Concurrency  int
	PollInterval time.Duration
	LeaseWait    time.Duration

	EngineCommand string
	EngineArgs    []string

	ScratchDir string
}

// LoadWorker resolves the worker configuration from the environment.
func LoadWorker() (*WorkerConfig, error) {
	cfg := &WorkerConfig{
		APIBase:      ParseString("BRIDGE_API_URL", "http://localhost:8080"),
		WorkerToken:  ParseString("BRIDGE_WORKER_TOKEN", ""),
		WorkerID:     ParseString("BRIDGE_WORKER_ID", "worker-"+uuid.NewString()[:8]),
		Concurrency:  ParseInt("BRIDGE_WORKER_CONCURRENCY", 1),
		PollInterval: ParseDuration("BRIDGE_WORKER_POLL_INTERVAL", 2*time.Second),
		LeaseWait:    ParseDuration("BRIDGE_LEASE_WAIT", 25*time.Second),

		EngineCommand: ParseString("BRIDGE_ENGINE_COMMAND", ""),
		ScratchDir:    ParseString("BRIDGE_SCRATCH_DIR", ""),
	}
	if args := ParseString("BRIDGE_ENGINE_ARGS", ""); args != "" {
		cfg.EngineArgs = strings.Fields(args)
	}

	var problems []string
	if cfg.APIBase == "" {
		problems = append(problems, "BRIDGE_API_URL must not be empty")
	}
	if cfg.Concurrency < 1 {
		problems = append(problems, "worker concurrency must be at least 1")
	}
	if cfg.PollInterval <= 0 {
		problems = append(problems, "poll interval must be positive")
	}
	if len(problems) > 0 {
		return nil, errors.New("invalid worker configuration: " + strings.Join(problems, "; "))
	}

	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if cfg.EngineCommand == "" && ParseString("BRIDGE_ENGINE_ARGS", "") != "" {
		return nil, fmt.Errorf("invalid worker configuration: BRIDGE_ENGINE_ARGS set without BRIDGE_ENGINE_COMMAND")
	}
	return cfg, nil
}
