package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"catalog-matcher/internal/config"
	"catalog-matcher/internal/middleware"
	recHnd "catalog-matcher/internal/reconcile/handler"
	recSvc "catalog-matcher/internal/reconcile/service"
	"catalog-matcher/server/http/handlers"
)

func NewRouter(cfg config.Config, matcher *recSvc.Matcher, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: requestID -> recover -> logging -> cors -> limit
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	// health-check
	r.Get("/health", handlers.Health)

	r.Post("/match", recHnd.Match(matcher, logger))
	r.Post("/titles/correct", recHnd.CorrectTitles(matcher, logger))
	r.Post("/images/assign", recHnd.AssignImages(cfg, matcher, logger))

	return r
}
