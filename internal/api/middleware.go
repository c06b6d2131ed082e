// SPDX-License-Identifier: MIT

package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viktor-platform/scia-bridge/internal/log"
)

// recoverer turns handler panics into 500 responses.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger := log.WithComponentFromContext(r.Context(), "api")
				logger.Error().
					Interface("panic", rec).
					Str("event", "api.panic").
					Str("path", r.URL.Path).
					Msg("handler panicked")
				writeErrorStatus(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestID attaches a correlation ID, honoring an inbound
// X-Request-Id header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(log.ContextWithRequestID(r.Context(), id)))
	})
}

// accessLog emits one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &loggingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lw, r)

		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Info().
			Str("event", "http.request").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", lw.status).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request handled")
	})
}

type loggingWriter struct {
	http.ResponseWriter
	status int
}

func (w *loggingWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// apiAuth guards the editor and job endpoints with the API token.
func (s *Server) apiAuth(next http.Handler) http.Handler {
	return s.tokenAuth(next, func() string { return s.cfg.Current().APIToken }, "api")
}

// workerAuth guards the worker protocol with the worker token.
func (s *Server) workerAuth(next http.Handler) http.Handler {
	return s.tokenAuth(next, func() string { return s.cfg.Current().WorkerToken }, "worker")
}

// tokenAuth is fail-closed: with no token configured, requests are
// denied unless anonymous access is explicitly enabled.
func (s *Server) tokenAuth(next http.Handler, token func() string, realm string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := token()
		if want == "" {
			if s.cfg.Current().AllowAnonymous {
				next.ServeHTTP(w, r)
				return
			}
			log.WithComponentFromContext(r.Context(), "auth").Error().
				Str("event", "auth.fail_closed").
				Str("realm", realm).
				Msg("no token configured and anonymous access disabled, denying")
			writeErrorStatus(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		got := bearerToken(r)
		if got == "" {
			log.WithComponentFromContext(r.Context(), "auth").Warn().
				Str("event", "auth.missing_header").
				Str("realm", realm).
				Msg("authorization header missing")
			writeErrorStatus(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			log.WithComponentFromContext(r.Context(), "auth").Warn().
				Str("event", "auth.invalid_token").
				Str("realm", realm).
				Msg("invalid token")
			writeErrorStatus(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
