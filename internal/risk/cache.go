package risk

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
	"github.com/quantfolio/risk-engine/internal/repository"
)

// EntryState tracks the lifecycle of one cached (portfolio, as-of)
// result: Empty -> Computing -> Ready -> Stale, with Stale -> Computing
// on the next request.
type EntryState int

const (
	// StateEmpty means no computation has happened for the key.
	StateEmpty EntryState = iota
	// StateComputing means a pipeline run is in flight for the key.
	StateComputing
	// StateReady means a result is stored and servable.
	StateReady
	// StateStale means the stored result was invalidated and must be
	// recomputed before it can be served again.
	StateStale
)

// Gateway wraps the engine with a result cache keyed by (portfolio id,
// as-of date). Concurrent requests for the same key collapse into a
// single computation via per-key single-flight; unrelated portfolios
// never contend. Failures are not cached, so the next request retries
// cleanly, and stale results are never served.
type Gateway struct {
	engine  *Engine
	results *repository.ResultRepository
	group   singleflight.Group

	mu     sync.Mutex
	states map[string]EntryState

	// now is injectable for rollover tests.
	now func() time.Time

	log zerolog.Logger
}

// NewGateway creates a cache gateway around the engine.
func NewGateway(engine *Engine, results *repository.ResultRepository, log zerolog.Logger) *Gateway {
	return &Gateway{
		engine:  engine,
		results: results,
		states:  make(map[string]EntryState),
		now:     time.Now,
		log:     log.With().Str("component", "cache_gateway").Logger(),
	}
}

// Get returns the risk bundle for a portfolio as of today, computing
// and caching it on a miss. A caller whose context expires while a
// computation is in flight abandons its wait; the computation itself
// carries on for the remaining waiters.
func (g *Gateway) Get(ctx context.Context, portfolioID string) (model.RiskBundle, error) {
	asOf := g.now().UTC().Format("2006-01-02")
	key := portfolioID + "|" + asOf

	if g.state(key) == StateReady {
		bundle, err := g.results.Get(portfolioID, asOf)
		if err == nil {
			g.log.Debug().Str("key", key).Msg("Cache hit")
			return bundle, nil
		}
		if !errors.Is(err, apperrors.ErrResultNotFound) {
			return model.RiskBundle{}, err
		}
		// Row vanished underneath us; fall through to recompute.
	}

	// A Ready entry can also exist from a previous process run.
	if g.state(key) == StateEmpty {
		bundle, err := g.results.Get(portfolioID, asOf)
		if err == nil {
			g.setState(key, StateReady)
			g.log.Debug().Str("key", key).Msg("Cache hit (persisted)")
			return bundle, nil
		}
		if !errors.Is(err, apperrors.ErrResultNotFound) {
			return model.RiskBundle{}, err
		}
	}

	g.setState(key, StateComputing)

	// The computation deliberately runs detached from the caller's
	// context: other waiters collapsed onto this key still need the
	// result if this caller gives up.
	ch := g.group.DoChan(key, func() (any, error) {
		bundle, err := g.engine.Compute(context.Background(), portfolioID, g.now().UTC())
		if err != nil {
			g.setState(key, StateEmpty)
			return nil, err
		}
		if err := g.results.Save(bundle); err != nil {
			g.setState(key, StateEmpty)
			return nil, err
		}
		g.setState(key, StateReady)
		return bundle, nil
	})

	select {
	case <-ctx.Done():
		g.log.Debug().Str("key", key).Msg("Caller abandoned in-flight computation")
		return model.RiskBundle{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.RiskBundle{}, res.Err
		}
		return res.Val.(model.RiskBundle), nil
	}
}

// Invalidate marks all cached entries of one portfolio stale and
// removes their stored rows. The next request recomputes.
func (g *Gateway) Invalidate(portfolioID string) error {
	if err := g.results.DeletePortfolio(portfolioID); err != nil {
		return err
	}
	g.markStale(func(key string) bool {
		return strings.HasPrefix(key, portfolioID+"|")
	})
	g.log.Info().Str("portfolio_id", portfolioID).Msg("Cache invalidated for portfolio")
	return nil
}

// InvalidateAll clears the entire result cache.
func (g *Gateway) InvalidateAll() error {
	if err := g.results.DeleteAll(); err != nil {
		return err
	}
	g.markStale(func(string) bool { return true })
	g.log.Info().Msg("Cache invalidated for all portfolios")
	return nil
}

// Rollover drops entries whose as-of date precedes the current trading
// day. The scheduler calls it shortly after UTC midnight.
func (g *Gateway) Rollover() error {
	today := g.now().UTC().Format("2006-01-02")
	if err := g.results.DeleteBefore(today); err != nil {
		return err
	}
	g.markStale(func(key string) bool {
		parts := strings.SplitN(key, "|", 2)
		return len(parts) == 2 && parts[1] < today
	})
	g.log.Info().Str("as_of", today).Msg("Rolled over result cache")
	return nil
}

func (g *Gateway) state(key string) EntryState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.states[key]
}

func (g *Gateway) setState(key string, s EntryState) {
	g.mu.Lock()
	g.states[key] = s
	g.mu.Unlock()
}

func (g *Gateway) markStale(match func(string) bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, state := range g.states {
		if state == StateReady && match(key) {
			g.states[key] = StateStale
			g.group.Forget(key)
		}
	}
}
