package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RequestLogger struct {
	logr *zap.Logger
}

// NewRequestLogger creates a reusable request logging middleware instance
func NewRequestLogger(logr *zap.Logger) *RequestLogger {
	return &RequestLogger{logr: logr.Named("http")}
}

// Log records method, path, status, size and latency of every request
func (m *RequestLogger) Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		fields := []zap.Field{
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
		}

		switch {
		case status >= http.StatusInternalServerError:
			m.logr.Error("request", fields...)
		case status >= http.StatusBadRequest:
			m.logr.Warn("request", fields...)
		default:
			m.logr.Info("request", fields...)
		}
	})
}
