package middleware

import (
	"context"
	"net/http"
	"time"

	"apod_gallery/internal/logger"
	"apod_gallery/internal/metrics"

	"github.com/google/uuid"
)

// RequestIDKey - тип ключа для хранения ID запроса в контексте
type RequestIDKey string

const (
	// RequestIDHeader - имя заголовка для ID запроса
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey - ключ контекста для ID запроса
	RequestIDContextKey RequestIDKey = "request_id"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestID достаёт ID запроса из контекста.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// RequestIDMiddleware добавляет ID запроса в контекст и заголовок ответа
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware логирует каждый запрос и считает его в метриках
func LoggingMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			m.ObserveRequest(r.Method, rw.statusCode)
			logger.Log.WithFields(logger.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rw.statusCode,
				"duration":   time.Since(start),
				"request_id": RequestID(r.Context()),
				"remote_ip":  r.RemoteAddr,
			}).Info("Request processed")
		})
	}
}
