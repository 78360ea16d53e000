package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CORS allows cross-origin requests from any origin
func CORS(handler http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(handler)
}
