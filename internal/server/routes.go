package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/niktheblak/temperature-assistant/internal/service"
)

const maxRequestSize = 64 << 10

type askRequest struct {
	Query string `json:"query"`
}

func temperatureHandler(svc service.Service, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, svc.GetReading(r.Context()), logger)
	})
}

func askHandler(svc service.Service, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestSize)).Decode(&req); err != nil {
			logger.LogAttrs(r.Context(), slog.LevelWarn, "Invalid request body", slog.Any("error", err))
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		answer := svc.AskQuestion(r.Context(), req.Query)
		writeJSON(w, r, createAskResponse(answer), logger)
	})
}

func healthHandler(logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, map[string]string{"status": "ok"}, logger)
	})
}

func createAskResponse(answer service.Answer) map[string]any {
	m := make(map[string]any)
	if answer.Err != nil {
		m["error"] = answer.Err.Error()
	} else {
		m["response"] = answer.Response
	}
	m["temperature"] = answer.Temperature
	return m
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.LogAttrs(r.Context(), slog.LevelError, "Error while writing output", slog.Any("error", err))
	}
}
