// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/viktor-platform/scia-bridge/internal/artifacts"
	"github.com/viktor-platform/scia-bridge/internal/jobs"
	"github.com/viktor-platform/scia-bridge/internal/log"
	"github.com/viktor-platform/scia-bridge/internal/params"
	"github.com/viktor-platform/scia-bridge/internal/scia"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorStatus writes the uniform error body.
func writeErrorStatus(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// respondError maps package sentinels to HTTP status codes.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, params.ErrInvalidDefinition):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, jobs.ErrNotFound), errors.Is(err, artifacts.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, jobs.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, scia.ErrNoTemplate):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusBadRequest
	}
	if status >= 500 {
		log.WithComponentFromContext(r.Context(), "api").Error().
			Err(err).
			Str("event", "api.error").
			Msg("request failed")
	}
	writeErrorStatus(w, status, err.Error())
}

// decodeDefinition reads a bridge definition from the request body.
// Absent fields keep their defaults; an empty body is the default
// bridge.
func decodeDefinition(r *http.Request) (params.BridgeParams, error) {
	p := params.Defaults()
	err := json.NewDecoder(r.Body).Decode(&p)
	if err != nil && !errors.Is(err, io.EOF) {
		return p, fmt.Errorf("decode definition: %w", err)
	}
	return p, nil
}

// setDownloadHeaders prepares a file download response.
func setDownloadHeaders(w http.ResponseWriter, name, contentType string, size int64, mod time.Time) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if !mod.IsZero() {
		w.Header().Set("Last-Modified", mod.UTC().Format(http.TimeFormat))
	}
}
