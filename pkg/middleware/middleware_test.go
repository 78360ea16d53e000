package middleware

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	})
	t.Run("Simple request", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/api/temperature", nil)
		req.Header.Set("Origin", "http://raspberrypi.local:3000")
		w := httptest.NewRecorder()
		CORS(handler).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "OK", w.Body.String())
	})
	t.Run("Preflight", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("OPTIONS", "/api/ask", nil)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		w := httptest.NewRecorder()
		CORS(handler).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Empty(t, w.Body.String())
	})
	t.Run("Same origin", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/api/temperature", nil)
		w := httptest.NewRecorder()
		CORS(handler).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
	})
}

func TestAccessLog(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	buf := new(bytes.Buffer)
	logger := slog.New(slog.NewTextHandler(buf, nil))
	req := httptest.NewRequest("GET", "/api/temperature", nil)
	w := httptest.NewRecorder()
	AccessLog(handler, logger).ServeHTTP(w, req)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Contains(t, buf.String(), "path=/api/temperature")
	assert.Contains(t, buf.String(), "status=418")
}
