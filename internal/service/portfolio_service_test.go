package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cryptiq/internal/dto"
	"cryptiq/internal/model"
	"cryptiq/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPortfolioService(t *testing.T, deps *testDeps, holdings model.Holdings) PortfolioService {
	t.Helper()
	if holdings != nil {
		profile := model.NewUserProfile("1")
		profile.Holdings = holdings
		require.NoError(t, deps.repo.ProfileRepo.Save(context.Background(), profile))
	}
	svc := NewPortfolioService(deps.cfg, logger.NewNop(), deps.repo.ProfileRepo, deps.repo.ChatLogRepo, deps.market)
	svc.(*portfolioService).now = func() time.Time { return time.Date(2025, 1, 15, 20, 0, 0, 0, time.UTC) }
	return svc
}

func TestPortfolioService_Summary(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)
	deps.market.prices = dto.MarketData{
		"bitcoin":  {USD: 50000, USD24hChange: 1.5},
		"ethereum": {USD: 3000, USD24hChange: -2},
	}
	svc := newPortfolioService(t, deps, model.Holdings{"btc": 0.5, "eth": 2, "doge": 0})

	summary, err := svc.Summary(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 31000.0, summary.Total)
	assert.Nil(t, summary.Previous)
	require.Len(t, summary.Lines, 3)
	assert.Equal(t, "btc", summary.Lines[0].Symbol)
	assert.Equal(t, 25000.0, summary.Lines[0].Value)
	assert.Equal(t, 0.0, summary.Lines[1].Value, "unpriced coins are valued at zero")

	deps.market.prices["bitcoin"] = dto.CoinPrice{USD: 60000}
	summary, err = svc.Summary(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, summary.Previous)
	diff, pct, ok := summary.Performance()
	require.True(t, ok)
	assert.Equal(t, 5000.0, diff)
	assert.InDelta(t, 16.129, pct, 0.001)

	history, err := svc.History(ctx, "1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 31000.0, history[0].Value)
	assert.Equal(t, 36000.0, history[1].Value)

	recent, err := deps.repo.ChatLogRepo.Recent(ctx, "1", 5)
	require.NoError(t, err)
	assert.Empty(t, recent, "portfolio checks stay out of the chat context")
}

func TestPortfolioService_SummaryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no profile", func(t *testing.T) {
		svc := newPortfolioService(t, newTestDeps(t), nil)
		_, err := svc.Summary(ctx, "1")
		assert.ErrorIs(t, err, ErrNoProfile)
	})

	t.Run("no holdings", func(t *testing.T) {
		svc := newPortfolioService(t, newTestDeps(t), model.Holdings{})
		_, err := svc.Summary(ctx, "1")
		assert.ErrorIs(t, err, ErrNoHoldings)
	})

	t.Run("market data down", func(t *testing.T) {
		deps := newTestDeps(t)
		deps.market.pricesErr = errors.New("503")
		svc := newPortfolioService(t, deps, model.Holdings{"btc": 1})

		_, err := svc.Summary(ctx, "1")
		assert.ErrorIs(t, err, ErrMarketData)

		history, err := svc.History(ctx, "1")
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}

func TestPortfolioService_ZeroValueHasNoPerformance(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)
	deps.market.prices = dto.MarketData{"bitcoin": {USD: 100}}
	svc := newPortfolioService(t, deps, model.Holdings{"btc": 1})

	_, err := svc.Summary(ctx, "1")
	require.NoError(t, err)

	deps.market.prices = dto.MarketData{"bitcoin": {USD: 0}}
	summary, err := svc.Summary(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, summary.Previous)
}

func TestPortfolioService_Risk(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)
	deps.market.prices = dto.MarketData{
		"bitcoin":  {USD: 50000},
		"ethereum": {USD: 3000},
	}
	svc := newPortfolioService(t, deps, model.Holdings{"btc": 0.5, "eth": 2})

	risk, err := svc.Risk(ctx, "1")
	require.NoError(t, err)
	assert.InDelta(t, 80.645, risk, 0.001)

	deps.market.prices = dto.MarketData{}
	_, err = svc.Risk(ctx, "1")
	assert.ErrorIs(t, err, ErrNoHoldingsValue)
}

func TestPortfolioService_Analytics(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)
	deps.market.markets = []dto.CoinMarket{
		{ID: "bitcoin", Symbol: "btc", CurrentPrice: 50000, ChangePercent: 10},
		{ID: "ethereum", Symbol: "eth", CurrentPrice: 3000, ChangePercent: -5},
		{ID: "litecoin", Symbol: "ltc", CurrentPrice: 90, ChangePercent: 2},
	}
	svc := newPortfolioService(t, deps, model.Holdings{"btc": 1, "eth": 1, "ltc": 1, "doge": 0})

	best, worst, err := svc.Analytics(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 7, deps.market.lastDays)
	assert.Equal(t, dto.CoinPerformance{Symbol: "btc", ChangePct7d: 10}, best)
	assert.Equal(t, dto.CoinPerformance{Symbol: "eth", ChangePct7d: -5}, worst)

	deps.market.markets = []dto.CoinMarket{{ID: "unknown"}}
	_, _, err = svc.Analytics(ctx, "1")
	assert.ErrorIs(t, err, ErrNoHistory)

	deps.market.marketsErr = errors.New("timeout")
	_, _, err = svc.Analytics(ctx, "1")
	assert.ErrorIs(t, err, ErrMarketData)
}

func TestPortfolioService_Backtest(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)
	deps.market.markets = []dto.CoinMarket{
		{ID: "bitcoin", Symbol: "btc", CurrentPrice: 50000, ChangePercent: 25},
	}
	svc := newPortfolioService(t, deps, model.Holdings{"btc": 0.5, "eth": 2})

	_, err := svc.Backtest(ctx, "1", 5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	result, err := svc.Backtest(ctx, "1", DefaultBacktestDays)
	require.NoError(t, err)
	assert.Equal(t, 30, deps.market.lastDays)
	assert.InDelta(t, 20000, result.StartValue, 0.0001)
	assert.InDelta(t, 25000, result.EndValue, 0.0001)
	assert.InDelta(t, 25, result.ChangePercent(), 0.0001)
	assert.Equal(t, []string{"eth"}, result.Missing)

	deps.market.markets = nil
	_, err = svc.Backtest(ctx, "1", 7)
	assert.ErrorIs(t, err, ErrNoHistory)
}
