package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// JWTAuth rejects requests without a valid bearer token and stores the
// caller in the request context.
func JWTAuth(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err == nil {
				var user *domain.User
				user, err = auth.ParseToken(secret, tokenString)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
					return
				}
			}
			log.Debug("JWTAuth: request rejected", "path", r.URL.Path, "error", err)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: domain.ErrUnauthenticated.Error()})
		})
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString, err := auth.BearerToken(r.Header.Get("Authorization")); err == nil {
				if user, err := auth.ParseToken(secret, tokenString); err == nil {
					r = r.WithContext(auth.WithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request and records its latency.
func RequestLogger(log *logger.Logger, m *metrics.MetricsManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if m != nil {
				m.HTTPRequestDuration.WithLabelValues(r.Method+" "+route, strconv.Itoa(status)).Observe(duration.Seconds())
			}

			kv := []interface{}{
				"method", r.Method, "route", route, "status", status,
				"duration", duration, "request_id", chimw.GetReqID(r.Context()),
			}
			if status >= http.StatusInternalServerError {
				log.Error("HTTP request failed", kv...)
			} else {
				log.Info("HTTP request", kv...)
			}
		})
	}
}
