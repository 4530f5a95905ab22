package service

import (
	"context"
	"testing"
	"time"

	"cryptiq/config"
	"cryptiq/internal/dto"
	"cryptiq/internal/repository"
	"cryptiq/pkg/buntdb"
	"cryptiq/pkg/logger"

	"github.com/stretchr/testify/require"
)

type fakeMarketData struct {
	prices     dto.MarketData
	pricesErr  error
	markets    []dto.CoinMarket
	marketsErr error
	lastDays   int
}

func (f *fakeMarketData) GetPrices(ctx context.Context, symbols []string) (dto.MarketData, error) {
	if f.pricesErr != nil {
		return dto.MarketData{}, f.pricesErr
	}
	return f.prices, nil
}

func (f *fakeMarketData) GetMarkets(ctx context.Context, symbols []string, days int) ([]dto.CoinMarket, error) {
	f.lastDays = days
	return f.markets, f.marketsErr
}

type fakeAI struct {
	answer  string
	err     error
	history []dto.ChatMessage
	prompt  string
}

func (f *fakeAI) Complete(ctx context.Context, history []dto.ChatMessage, prompt string) (string, error) {
	f.history = history
	f.prompt = prompt
	return f.answer, f.err
}

type testDeps struct {
	cfg    *config.Config
	repo   *repository.Repository
	market *fakeMarketData
	ai     *fakeAI
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	db, err := buntdb.Open(buntdb.InMemory, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	market := &fakeMarketData{prices: dto.MarketData{}}
	ai := &fakeAI{}
	return &testDeps{
		cfg: &config.Config{
			Telegram: config.TelegramConfig{ChatHistorySize: 5},
			News:     config.News{Limit: 5},
			Alert: config.Alert{
				Interval:        time.Hour,
				CycleTimeout:    time.Second,
				FetchTimeout:    time.Second,
				NotifyTimeout:   time.Second,
				DefaultTimezone: "US/Pacific",
			},
		},
		repo: &repository.Repository{
			ProfileRepo:    repository.NewBuntProfileRepository(db),
			AlertRepo:      repository.NewBuntAlertRepository(db, logger.NewNop()),
			ChatLogRepo:    repository.NewBuntChatLogRepository(db),
			MarketDataRepo: market,
			AIRepo:         ai,
		},
		market: market,
		ai:     ai,
	}
}
