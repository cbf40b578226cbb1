package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/Shashankphatkure/equico-app/pkg/config"
)

// TokenHeader exposes the freshly minted access token to API clients.
const TokenHeader = "X-Equico-Token"

// CORS returns middleware that applies the configured allowed origin policy.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", TokenHeader, "Idempotency-Key", "X-Requested-With"},
		ExposedHeaders:   []string{TokenHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
