// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/viktor-platform/scia-bridge/internal/jobs"
	"github.com/viktor-platform/scia-bridge/internal/log"
	"github.com/viktor-platform/scia-bridge/internal/metrics"
)

// maxUploadBytes bounds a single artifact upload (64 MiB).
const maxUploadBytes = 64 << 20

type workerNextRequest struct {
	WorkerID string `json:"worker_id"`
}

// handleWorkerNext leases the next queued job, long-polling up to the
// configured lease wait. 204 means nothing became available.
func (s *Server) handleWorkerNext(w http.ResponseWriter, r *http.Request) {
	var req workerNextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, err)
		return
	}
	if req.WorkerID == "" {
		writeErrorStatus(w, http.StatusBadRequest, "worker_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Current().LeaseWait)
	defer cancel()
	ctx = log.ContextWithWorkerID(ctx, req.WorkerID)

	job, err := s.manager.Lease(ctx, req.WorkerID)
	if err != nil {
		if errors.Is(err, jobs.ErrLeaseTimeout) {
			metrics.RecordWorkerPoll("empty")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		metrics.RecordWorkerPoll("error")
		respondError(w, r, err)
		return
	}
	metrics.RecordWorkerPoll("leased")
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleWorkerUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	if _, err := s.manager.Get(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes+1))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if len(data) > maxUploadBytes {
		writeErrorStatus(w, http.StatusRequestEntityTooLarge, "artifact exceeds upload limit")
		return
	}

	info, err := s.artifacts.Write(id, chi.URLParam(r, "name"), data)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

type workerFailRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleWorkerComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	// The artifact set was uploaded beforehand; the store is the source
	// of truth for what gets attached.
	list, err := s.artifacts.List(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	refs := make([]jobs.ArtifactRef, len(list))
	for i, a := range list {
		refs[i] = jobs.ArtifactRef{Name: a.Name, Size: a.Size, ContentType: a.ContentType}
	}

	job, err := s.manager.Complete(r.Context(), id, refs)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleWorkerFail(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req workerFailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, err)
		return
	}
	if req.Reason == "" {
		req.Reason = "worker reported failure"
	}

	job, err := s.manager.Fail(r.Context(), id, req.Reason)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
