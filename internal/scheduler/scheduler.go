// Package scheduler owns the background jobs of the engine. Today that
// is a single daily job: rolling the result cache over to the new
// trading day.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/quantfolio/risk-engine/internal/risk"
)

// Scheduler runs the daily cache rollover shortly after UTC midnight so
// the first request of a new trading day recomputes instead of serving
// yesterday's bundle.
type Scheduler struct {
	cron    *cron.Cron
	gateway *risk.Gateway
	log     zerolog.Logger
}

// New creates a scheduler around the cache gateway.
func New(gateway *risk.Gateway, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		gateway: gateway,
		log:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the rollover job and launches the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("5 0 * * *", func() {
		if err := s.gateway.Rollover(); err != nil {
			s.log.Error().Err(err).Msg("Daily cache rollover failed")
			return
		}
		s.log.Info().Msg("Daily cache rollover complete")
	})
	if err != nil {
		return fmt.Errorf("failed to register rollover job: %w", err)
	}

	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}
