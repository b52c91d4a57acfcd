package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/risk-engine/internal/api"
	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/config"
	"github.com/quantfolio/risk-engine/internal/database"
	"github.com/quantfolio/risk-engine/internal/provider"
	"github.com/quantfolio/risk-engine/internal/repository"
	"github.com/quantfolio/risk-engine/internal/risk"
	"github.com/quantfolio/risk-engine/internal/scheduler"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	log.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	resultRepo := repository.NewResultRepository(db)

	var providerRepo *repository.ProviderConfigRepository
	if cfg.Provider.FernetKey != "" {
		providerRepo, err = repository.NewProviderConfigRepository(db, cfg.Provider.FernetKey)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize provider token storage")
		}
	}

	// Select the price history source
	timeout := time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
	var prices provider.PriceHistory
	switch cfg.Provider.Source {
	case "http":
		token := ""
		if providerRepo != nil {
			token, err = providerRepo.GetToken()
			if err != nil && !errors.Is(err, apperrors.ErrProviderConfigNotFound) {
				log.Fatal().Err(err).Msg("Failed to read provider token")
			}
		}
		prices = provider.NewChartClient(cfg.Provider.BaseURL, token, timeout, log)
	case "database":
		prices = provider.NewDBProvider(priceRepo, log)
	default:
		log.Fatal().Str("source", cfg.Provider.Source).Msg("Unknown provider source")
	}

	// Create the risk engine and its cache gateway
	engine := risk.NewEngine(portfolioRepo, prices, cfg.Risk, timeout, log)
	gateway := risk.NewGateway(engine, resultRepo, log)

	// Daily cache rollover
	sched := scheduler.New(gateway, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer sched.Stop()

	// Create router
	router := api.NewRouter(api.Deps{
		DB:            db,
		PortfolioRepo: portfolioRepo,
		ProviderRepo:  providerRepo,
		Engine:        engine,
		Gateway:       gateway,
		Config:        cfg,
		Log:           log,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
