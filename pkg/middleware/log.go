package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
)

// AccessLog logs one record per request
func AccessLog(handler http.Handler, logger *slog.Logger) http.Handler {
	return handlers.CustomLoggingHandler(io.Discard, handler, func(_ io.Writer, params handlers.LogFormatterParams) {
		logger.LogAttrs(
			params.Request.Context(),
			slog.LevelInfo,
			"Request",
			slog.String("method", params.Request.Method),
			slog.String("path", params.URL.Path),
			slog.Int("status", params.StatusCode),
			slog.Int("size", params.Size),
			slog.String("remote", params.Request.RemoteAddr),
			slog.Duration("elapsed", time.Since(params.TimeStamp)),
		)
	})
}
