package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"sinaliza-recon/internal/config"
	"sinaliza-recon/internal/middleware"
	necHnd "sinaliza-recon/internal/necessidade/handler"
	"sinaliza-recon/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, nec *necHnd.Handler, store handlers.Pinger) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health(store))
	nec.Routes(r)

	return r
}
