package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"peco-service/internal/app"
	"peco-service/internal/domain"
	"peco-service/internal/metrics"
)

type principalKey struct{}

// principal returns the authenticated record stored by authenticate.
func principal(ctx context.Context) (domain.AuthRecord, bool) {
	rec, ok := ctx.Value(principalKey{}).(domain.AuthRecord)
	return rec, ok
}

func withPrincipal(ctx context.Context, rec domain.AuthRecord) context.Context {
	return context.WithValue(ctx, principalKey{}, rec)
}

// authenticate resolves the bearer token. Websocket clients cannot set headers, so the
// access_token query parameter is accepted too.
func authenticate(auth *app.AuthService, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" || token == r.Header.Get("Authorization") {
				token = r.URL.Query().Get("access_token")
			}
			if token == "" {
				writeError(w, log, domain.ErrUnauthenticated)
				return
			}
			rec, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), rec)))
		})
	}
}

// requireRole rejects principals without the given role.
func requireRole(role string, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec, ok := principal(r.Context())
			if !ok {
				writeError(w, log, domain.ErrUnauthenticated)
				return
			}
			if rec.Role != role {
				writeError(w, log, domain.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one structured line per request.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("http request")
		})
	}
}

// instrument records request durations labelled by route pattern, not raw path.
func instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveRequest(r.Method, route, status, time.Since(start))
		})
	}
}
