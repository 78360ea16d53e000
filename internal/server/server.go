package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/niktheblak/temperature-assistant/internal/service"
	"github.com/niktheblak/temperature-assistant/pkg/middleware"
)

type Config struct {
	// StaticDir is an optional directory of frontend files served at /
	StaticDir string
	Logger    *slog.Logger
}

// New returns the HTTP handler of the query service
func New(svc service.Service, cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	mux := http.NewServeMux()
	mux.Handle("GET /api/temperature", temperatureHandler(svc, cfg.Logger))
	mux.Handle("POST /api/ask", askHandler(svc, cfg.Logger))
	mux.Handle("GET /health", healthHandler(cfg.Logger))
	if cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticDir)))
	}
	return middleware.CORS(mux)
}
