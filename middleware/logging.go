package middleware

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"p9e.in/transportpro/pkg/logger"
	"p9e.in/transportpro/prometheus"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs each request and feeds the HTTP metrics.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		status := strconv.Itoa(rec.status)

		if prometheus.HTTPRequestsTotal != nil {
			prometheus.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			prometheus.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(duration.Seconds())
		}

		logger.Get().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", duration),
			zap.String("user", GetUsername(r)),
		)
	})
}
