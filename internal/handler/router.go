/*
Package handler provides the HTTP routing setup for the ops endpoint.

The ops endpoint is read-only: it exposes liveness and registry statistics for
operators and dashboards. It never touches chat semantics.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"roomcast/internal/app/chat"
	"roomcast/internal/configs"
	"roomcast/internal/pkg/logx"
	"roomcast/internal/pkg/resp"
)

// Router sets up the ops HTTP routing table (chi.Router).
// It configures CORS from the allowed-origins list and applies request-id,
// real-ip, request logging, and panic-recovery middleware.
func Router(srv *chat.Server, cfg *configs.AppConfig) http.Handler {
	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if cfg.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(cfg.AllowedOrigins) > 0 {
		corsAllowedOrigins = cfg.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", HandleHealth())
	r.Get("/stats", HandleStats(srv))

	return r
}

// HandleHealth returns the liveness handler.
func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Roomcast Chat Server",
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandleStats returns a handler that reports the server's registry snapshot:
// online user count, room count, and per-room member counts.
func HandleStats(srv *chat.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, srv.Stats())
	}
}
