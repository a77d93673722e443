package http

import (
	"net/http"
	"strconv"
	"time"

	"dugod-content-service/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func requestLogger(r *http.Request, log logrus.FieldLogger) logrus.FieldLogger {
	entry := log.WithField("request_id", middleware.GetReqID(r.Context()))
	if userID := userIDFrom(r.Context()); userID != "" {
		entry = entry.WithField("user_id", userID)
	}
	return entry
}

// routePattern keeps metric labels bounded to registered routes.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// instrument records request metrics and writes one access log line per request.
func instrument(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.RequestInProgress.WithLabelValues(r.Method).Inc()
			defer metrics.RequestInProgress.WithLabelValues(r.Method).Dec()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			path := routePattern(r)
			elapsed := time.Since(start)
			metrics.RequestCounter.WithLabelValues(strconv.Itoa(status), r.Method, path).Inc()
			metrics.RequestDuration.WithLabelValues(strconv.Itoa(status), r.Method, path).Observe(elapsed.Seconds())

			entry := log.WithFields(logrus.Fields{
				"request_id":  middleware.GetReqID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"duration_ms": elapsed.Milliseconds(),
			})
			if userID := r.Header.Get(userIDHeader); userID != "" {
				entry = entry.WithField("user_id", userID)
			}
			if status >= http.StatusInternalServerError {
				entry.Error("request completed")
			} else {
				entry.Info("request completed")
			}
		})
	}
}
