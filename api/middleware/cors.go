package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/dmm341/avocado-ledger/api/responses"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// CORS lets the dashboard SPA call the API. An empty origin list falls back to local dev hosts.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders: []string{
			responses.HeaderTotalCount,
			responses.HeaderPage,
			responses.HeaderPageCount,
			requestIDHeader,
		},
		MaxAge: 300,
	}).Handler
}
