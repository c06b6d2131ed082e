// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/viktor-platform/scia-bridge/internal/scia"
	"github.com/viktor-platform/scia-bridge/internal/version"
)

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
		"commit":  version.Commit,
	})
}

// handleReadyz verifies the store and the esa template. The template is
// reported but not required: analyses degrade to the static estimate
// without it.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.manager.List(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	templateOK := true
	if _, err := scia.TemplatePath(s.dataDir); err != nil {
		templateOK = false
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.manager.QueueDepth(),
		"esa_template": map[string]any{
			"available": templateOK,
		},
	})
}
