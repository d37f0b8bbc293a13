package web

import (
	"net/http"
	"strings"
	"time"

	"pdf-ocr-service/internal/infra/logging"

	"github.com/oklog/ulid/v2"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// traceMiddleware tags every request with a ULID and logs it on the way out.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := ulid.Make().String()
		ctx := logging.WithTraceID(r.Context(), traceID)
		if owner := ownerID(r); owner != "" {
			ctx = logging.WithOwnerID(ctx, owner)
		}
		w.Header().Set("X-Trace-ID", traceID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		logging.With(ctx, s.log).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("latency", time.Since(start)).
			Msg("request")
	})
}

// ownerID extracts the caller identity set by the auth proxy in front
// of this service. Empty means unauthenticated.
func ownerID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Owner-ID"))
}

// isAdmin checks the Bearer token against the configured admin API key.
func (s *Server) isAdmin(r *http.Request) bool {
	if s.apiKey == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return false
	}
	return parts[1] == s.apiKey
}
