// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/viktor-platform/scia-bridge/internal/bridge"
	"github.com/viktor-platform/scia-bridge/internal/cache"
	"github.com/viktor-platform/scia-bridge/internal/log"
	"github.com/viktor-platform/scia-bridge/internal/params"
	"github.com/viktor-platform/scia-bridge/internal/report"
	"github.com/viktor-platform/scia-bridge/internal/scia"
	"github.com/viktor-platform/scia-bridge/internal/visualization"
)

// The foundations view renders the structural scene half-transparent and
// overlays the layout scene at near-full transparency for orientation.
const (
	foundationsOpacity = 0.5
	overlayOpacity     = 0.1
)

func (s *Server) handleParametrization(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"steps": params.Schema()})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	p, err := decodeDefinition(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := p.Validate(); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "definition": p})
}

func (s *Server) handleLayoutView(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, "layout", func(p params.BridgeParams) (any, error) {
		return visualization.BridgeLayout(p, 1.0), nil
	})
}

func (s *Server) handleFoundationsView(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, "foundations", func(p params.BridgeParams) (any, error) {
		model, err := bridge.Build(p)
		if err != nil {
			return nil, err
		}
		scene := visualization.BridgeFoundations(p, model, foundationsOpacity)
		visualization.Overlay(scene, visualization.BridgeLayout(p, overlayOpacity))
		return scene, nil
	})
}

// serveView renders a scene through the response cache.
func (s *Server) serveView(w http.ResponseWriter, r *http.Request, view string, render func(params.BridgeParams) (any, error)) {
	p, err := decodeDefinition(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := p.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	key, err := cache.Key(view, p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if cached, ok, err := s.cache.Get(r.Context(), key); err == nil && ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	} else if err != nil {
		log.WithComponentFromContext(r.Context(), "api").Warn().
			Err(err).
			Str("event", "cache.get_failed").
			Msg("cache lookup failed, rendering")
	}

	scene, err := render(p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	body, err := json.Marshal(map[string]any{"view": view, "scene": scene})
	if err != nil {
		respondError(w, r, err)
		return
	}
	ttl := s.cfg.Current().CacheTTL
	if err := s.cache.Set(r.Context(), key, body, ttl); err != nil {
		log.WithComponentFromContext(r.Context(), "api").Warn().
			Err(err).
			Str("event", "cache.set_failed").
			Msg("cache store failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleModelSummary(w http.ResponseWriter, r *http.Request) {
	p, err := decodeDefinition(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	model, err := bridge.Build(p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Summarize())
}

func (s *Server) handleModelXML(w http.ResponseWriter, r *http.Request) {
	s.serveModelXML(w, r, false)
}

func (s *Server) handleModelDef(w http.ResponseWriter, r *http.Request) {
	s.serveModelXML(w, r, true)
}

func (s *Server) serveModelXML(w http.ResponseWriter, r *http.Request, def bool) {
	p, err := decodeDefinition(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	model, err := bridge.Build(p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	input, defData, err := model.GenerateXMLInput()
	if err != nil {
		respondError(w, r, err)
		return
	}
	name, data := "viktor.xml", input
	if def {
		name, data = "viktor.xml.def", defData
	}
	setDownloadHeaders(w, name, "application/xml", int64(len(data)), time.Time{})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleModelEsa(w http.ResponseWriter, r *http.Request) {
	path, err := scia.TemplatePath(s.dataDir)
	if err != nil {
		respondError(w, r, err)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		respondError(w, r, err)
		return
	}
	setDownloadHeaders(w, "model.esa", "application/octet-stream", st.Size(), st.ModTime())
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}

func (s *Server) handleModelWorkbook(w http.ResponseWriter, r *http.Request) {
	p, err := decodeDefinition(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	model, err := bridge.Build(p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	data, err := report.ModelWorkbook(model)
	if err != nil {
		respondError(w, r, err)
		return
	}
	setDownloadHeaders(w, "model.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		int64(len(data)), time.Time{})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
