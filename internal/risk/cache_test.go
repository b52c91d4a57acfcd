package risk

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/model"
	"github.com/quantfolio/risk-engine/internal/repository"
	"github.com/quantfolio/risk-engine/internal/testutil"
)

// slowPriceHistory delays every fetch so in-flight computations stay
// observable from the test.
type slowPriceHistory struct {
	*testutil.MockPriceHistory
	delay time.Duration
}

func (s *slowPriceHistory) GetDailyPrices(ctx context.Context, ticker string, start, end time.Time) (model.PriceSeries, error) {
	time.Sleep(s.delay)
	return s.MockPriceHistory.GetDailyPrices(ctx, ticker, start, end)
}

func TestGateway(t *testing.T) {
	now := time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC)
	log := zerolog.Nop()

	setup := func(t *testing.T) (*Gateway, *testutil.MockPriceHistory, string, *repository.ResultRepository) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		prices := testutil.NewMockPriceHistory().
			WithSeries("AAA", now, randomWalk(150, 100, 0.012, 21)).
			WithSeries("SPY", now, randomWalk(150, 400, 0.01, 22))

		holdings := &stubHoldings{holdings: []model.Holding{
			{ID: testutil.MakeID(), Ticker: "AAA", Sector: "Technology", Quantity: 10},
		}}

		engine := NewEngine(holdings, prices, testRiskConfig(), 10*time.Second, log)
		results := repository.NewResultRepository(db)
		gateway := NewGateway(engine, results, log)
		gateway.now = func() time.Time { return now }

		return gateway, prices, portfolio.ID, results
	}

	t.Run("repeated gets serve the cached bundle", func(t *testing.T) {
		gateway, prices, pid, _ := setup(t)

		first, err := gateway.Get(context.Background(), pid)
		require.NoError(t, err)
		assert.Equal(t, 1, prices.CallCount("AAA"))

		second, err := gateway.Get(context.Background(), pid)
		require.NoError(t, err)

		// No recomputation, identical bundle.
		assert.Equal(t, 1, prices.CallCount("AAA"))
		assert.Equal(t, first.AsOf, second.AsOf)
		assert.Equal(t, first.LatestUpdate.Unix(), second.LatestUpdate.Unix())
	})

	t.Run("concurrent gets collapse into one computation", func(t *testing.T) {
		gateway, prices, pid, _ := setup(t)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := gateway.Get(context.Background(), pid)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, prices.CallCount("SPY"))
	})

	t.Run("failures are not cached", func(t *testing.T) {
		gateway, prices, pid, _ := setup(t)
		prices.WithError("SPY", apperrors.ErrDataUnavailable)

		_, err := gateway.Get(context.Background(), pid)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrDataUnavailable))

		// Heal the provider; the next request retries cleanly.
		delete(prices.Errors, "SPY")

		bundle, err := gateway.Get(context.Background(), pid)
		require.NoError(t, err)
		assert.Equal(t, pid, bundle.PortfolioID)
		assert.Equal(t, 2, prices.CallCount("SPY"))
	})

	t.Run("invalidation forces a recompute", func(t *testing.T) {
		gateway, prices, pid, results := setup(t)

		_, err := gateway.Get(context.Background(), pid)
		require.NoError(t, err)

		require.NoError(t, gateway.Invalidate(pid))

		_, err = results.Get(pid, now.Format("2006-01-02"))
		assert.True(t, errors.Is(err, apperrors.ErrResultNotFound))

		_, err = gateway.Get(context.Background(), pid)
		require.NoError(t, err)
		assert.Equal(t, 2, prices.CallCount("AAA"))
	})

	t.Run("invalidate all clears every portfolio", func(t *testing.T) {
		gateway, prices, pid, _ := setup(t)

		_, err := gateway.Get(context.Background(), pid)
		require.NoError(t, err)

		require.NoError(t, gateway.InvalidateAll())

		_, err = gateway.Get(context.Background(), pid)
		require.NoError(t, err)
		assert.Equal(t, 2, prices.CallCount("AAA"))
	})

	t.Run("rollover drops entries from previous days", func(t *testing.T) {
		gateway, prices, pid, results := setup(t)

		_, err := gateway.Get(context.Background(), pid)
		require.NoError(t, err)

		// Move to the next trading day and register prices for it.
		nextDay := now.AddDate(0, 0, 3) // Monday after the Friday
		gateway.now = func() time.Time { return nextDay }
		prices.WithSeries("AAA", nextDay, randomWalk(150, 100, 0.012, 23)).
			WithSeries("SPY", nextDay, randomWalk(150, 400, 0.01, 24))

		require.NoError(t, gateway.Rollover())

		_, err = results.Get(pid, now.Format("2006-01-02"))
		assert.True(t, errors.Is(err, apperrors.ErrResultNotFound))

		bundle, err := gateway.Get(context.Background(), pid)
		require.NoError(t, err)
		assert.Equal(t, nextDay.Format("2006-01-02"), bundle.AsOf)
	})

	t.Run("abandoning caller does not cancel the computation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		mock := testutil.NewMockPriceHistory().
			WithSeries("AAA", now, randomWalk(150, 100, 0.012, 25)).
			WithSeries("SPY", now, randomWalk(150, 400, 0.01, 26))
		prices := &slowPriceHistory{MockPriceHistory: mock, delay: 50 * time.Millisecond}

		holdings := &stubHoldings{holdings: []model.Holding{
			{ID: testutil.MakeID(), Ticker: "AAA", Quantity: 10},
		}}

		engine := NewEngine(holdings, prices, testRiskConfig(), 10*time.Second, zerolog.Nop())
		results := repository.NewResultRepository(db)
		gateway := NewGateway(engine, results, zerolog.Nop())
		gateway.now = func() time.Time { return now }

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := gateway.Get(ctx, portfolio.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))

		// The detached computation finishes and lands in the store.
		require.Eventually(t, func() bool {
			_, err := results.Get(portfolio.ID, now.Format("2006-01-02"))
			return err == nil
		}, 2*time.Second, 20*time.Millisecond)
	})
}
