// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/viktor-platform/scia-bridge/internal/log"
)

// Holder hands out the current configuration snapshot. Reloads swap the
// pointer; callers read a consistent config per request but listeners
// are never rebound.
type Holder struct {
	current  atomic.Pointer[AppConfig]
	filePath string
}

// NewHolder wraps an initial snapshot.
func NewHolder(cfg *AppConfig, filePath string) *Holder {
	h := &Holder{filePath: filePath}
	h.current.Store(cfg)
	return h
}

// Current returns the active snapshot.
func (h *Holder) Current() *AppConfig {
	return h.current.Load()
}

// Watch re-reads the config file on fsnotify events and on SIGHUP until
// ctx is done. Without a file path only SIGHUP triggers a reload.
// Invalid reloads keep the previous snapshot.
func (h *Holder) Watch(ctx context.Context) error {
	logger := log.WithComponent("config")

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	var events chan fsnotify.Event
	if h.filePath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		// Watch the directory: editors and renameio-style writers
		// replace the file, which drops a watch on the file itself.
		if err := watcher.Add(filepath.Dir(h.filePath)); err != nil {
			return err
		}
		events = make(chan fsnotify.Event, 1)
		go func() {
			for ev := range watcher.Events {
				if filepath.Clean(ev.Name) != filepath.Clean(h.filePath) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case events <- ev:
				default:
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-hup:
			h.reload(logger, "sighup")
		case <-events:
			h.reload(logger, "fsnotify")
		}
	}
}

func (h *Holder) reload(logger zerolog.Logger, trigger string) {
	cfg, err := Load(h.filePath)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("event", "config.reload_failed").
			Str("trigger", trigger).
			Msg("config reload failed, keeping previous snapshot")
		return
	}
	h.current.Store(cfg)
	logger.Info().
		Str("event", "config.reloaded").
		Str("trigger", trigger).
		Msg("configuration reloaded")
}
