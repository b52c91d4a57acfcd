package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/quantfolio/risk-engine/internal/api/handlers"
	custommiddleware "github.com/quantfolio/risk-engine/internal/api/middleware"
	"github.com/quantfolio/risk-engine/internal/config"
	"github.com/quantfolio/risk-engine/internal/repository"
	"github.com/quantfolio/risk-engine/internal/risk"
)

// Deps bundles everything the router needs.
type Deps struct {
	DB            *sql.DB
	PortfolioRepo *repository.PortfolioRepository
	ProviderRepo  *repository.ProviderConfigRepository
	Engine        *risk.Engine
	Gateway       *risk.Gateway
	Config        *config.Config
	Log           zerolog.Logger
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(deps.Log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(deps.Config.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(deps.DB, deps.ProviderRepo)
	portfolioHandler := handlers.NewPortfolioHandler(deps.PortfolioRepo)
	riskHandler := handlers.NewRiskHandler(deps.Gateway, deps.Engine)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.Get("/provider-config", systemHandler.GetProviderConfig)
			r.Post("/provider-config", systemHandler.SetProviderConfig)
			r.Post("/cache/clear", riskHandler.ClearCache)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", portfolioHandler.Portfolios)

			r.Route("/{portfolioID}", func(r chi.Router) {
				r.Use(custommiddleware.ValidatePortfolioIDMiddleware)
				r.Get("/risk", riskHandler.Risk)
				r.Get("/composition", riskHandler.Composition)
			})
		})
	})

	return r
}
