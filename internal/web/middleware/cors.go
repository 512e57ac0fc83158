package middleware

import (
	"net/http"

	"github.com/JonMunkholm/datatx/internal/config"
	"github.com/go-chi/cors"
)

// CORS returns the cross-origin policy built once from cfg.
// The X-Error-Code header is exposed so browsers can read upload failure codes.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   []string{"X-Error-Code"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}
