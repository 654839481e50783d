package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/catalog-connector/pkg/logger"
	"github.com/go-chi/chi/middleware"
)

// sensitiveHeaders are header name fragments that are never logged verbatim
var sensitiveHeaders = []string{
	"authorization",
	"apikey",
	"api-key",
	"cookie",
	"token",
	"secret",
}

// LoggingMiddleware logs one line per request and one per response, with the
// trace id and the headers that may carry credentials masked.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := base
			if ctxLogger, ok := logger.FromContext(r.Context()); ok {
				lg = ctxLogger
			}

			lg.Info("incoming request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", filterSensitiveHeaders(r.Header),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logResponse(r.Context(), lg, ww, time.Since(start))
		})
	}
}

func logResponse(ctx context.Context, lg *slog.Logger, ww middleware.WrapResponseWriter, duration time.Duration) {
	statusCode := ww.Status()
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	logLevel := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		logLevel = slog.LevelWarn
	} else if statusCode >= 500 {
		logLevel = slog.LevelError
	}

	lg.Log(ctx, logLevel, "response",
		"request_id", middleware.GetReqID(ctx),
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"response_size", ww.BytesWritten(),
	)
}

// filterSensitiveHeaders masks credentials, including the publishable key, which
// is public but still identifies the project
func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))

	for name, values := range headers {
		lowerName := strings.ToLower(name)

		isSensitive := false
		for _, sensitive := range sensitiveHeaders {
			if strings.Contains(lowerName, sensitive) {
				isSensitive = true
				break
			}
		}

		if isSensitive {
			filtered[name] = "[FILTERED]"
		} else {
			filtered[name] = strings.Join(values, ", ")
		}
	}

	return filtered
}
