// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/viktor-platform/scia-bridge/internal/jobs"
	"github.com/viktor-platform/scia-bridge/internal/log"
	"github.com/viktor-platform/scia-bridge/internal/params"
)

// submitRequest is the analysis submission body. The definition is
// optional per field; a timeout of zero selects the configured default.
type submitRequest struct {
	Definition     *params.BridgeParams `json:"definition"`
	TimeoutSeconds int                  `json:"timeout_seconds,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, err)
		return
	}
	p := params.Defaults()
	if req.Definition != nil {
		p = *req.Definition
	}
	if err := p.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	job, err := s.manager.Submit(r.Context(), p, timeout)
	if err != nil {
		respondError(w, r, err)
		return
	}
	log.WithComponentFromContext(r.Context(), "api").Info().
		Str("event", "jobs.submitted").
		Str("job_id", job.ID.String()).
		Msg("analysis submitted")
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := s.manager.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": list})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := s.manager.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := s.manager.Cancel(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := s.manager.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if job.Status != jobs.StatusCompleted {
		writeErrorStatus(w, http.StatusConflict, "analysis not completed: "+string(job.Status))
		return
	}

	name := "Report_1.pdf"
	for _, a := range job.Artifacts {
		if strings.HasSuffix(a.Name, ".pdf") {
			name = a.Name
			break
		}
	}
	s.streamArtifact(w, r, id, name)
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	if _, err := s.manager.Get(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	list, err := s.artifacts.List(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": list})
}

func (s *Server) handleDownloadArtifact(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	s.streamArtifact(w, r, id, chi.URLParam(r, "name"))
}

func (s *Server) streamArtifact(w http.ResponseWriter, r *http.Request, id uuid.UUID, name string) {
	rc, info, err := s.artifacts.Open(id, name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer rc.Close()
	setDownloadHeaders(w, info.Name, info.ContentType, info.Size, info.ModTime)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

// jobID parses the {id} route parameter, responding 404 on malformed
// IDs so probing for formats and for missing jobs is indistinguishable.
func jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStatus(w, http.StatusNotFound, "job not found")
		return uuid.Nil, false
	}
	return id, true
}
