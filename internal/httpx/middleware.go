package httpx

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/creator-calc/internal/auth"
	"github.com/AngelCh415/creator-calc/internal/metrics"
	"github.com/AngelCh415/creator-calc/internal/models"
	"github.com/AngelCh415/creator-calc/internal/utils"
)

// authenticate attaches the bearer token's identity to the request context.
// With required unset, anonymous requests pass through, but a token that is
// present and invalid is still rejected.
func authenticate(iss *auth.Issuer, log *slog.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" {
				if required {
					writeError(w, r, log, models.ErrUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(h, "Bearer ")
			if !ok {
				writeError(w, r, log, models.ErrUnauthorized)
				return
			}
			id, err := iss.Parse(strings.TrimSpace(token))
			if err != nil {
				writeError(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func requireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromContext(r.Context())
			if !ok {
				writeError(w, r, log, models.ErrUnauthorized)
				return
			}
			if !id.IsAdmin() {
				writeError(w, r, log, models.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// instrument records request latency per route and counts server errors.
func instrument(rec metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rec == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &utils.StatusRecorder{ResponseWriter: w}
			next.ServeHTTP(sr, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := sr.Status
			if status == 0 {
				status = http.StatusOK
			}
			tags := map[string]string{"method": r.Method, "route": route, "status": strconv.Itoa(status)}
			ctx := r.Context()
			_ = rec.Record(ctx, metrics.Metric{
				Name:  "http.request_ms",
				Kind:  metrics.KindTiming,
				Value: float64(time.Since(start).Microseconds()) / 1000,
				Tags:  tags,
			})
			if status >= http.StatusInternalServerError {
				_ = rec.Record(ctx, metrics.Metric{Name: "http.errors", Kind: metrics.KindError, Value: 1, Tags: tags})
			}
		})
	}
}

func userID(r *http.Request) string {
	id, _ := auth.FromContext(r.Context())
	return id.UserID
}
