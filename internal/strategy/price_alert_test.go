package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"cryptiq/config"
	"cryptiq/internal/dto"
	"cryptiq/internal/model"
	"cryptiq/internal/repository"
	"cryptiq/pkg/buntdb"
	"cryptiq/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarketData struct {
	prices  dto.MarketData
	err     error
	calls   int
	symbols []string
	onFetch func()
}

func (f *fakeMarketData) GetPrices(ctx context.Context, symbols []string) (dto.MarketData, error) {
	f.calls++
	f.symbols = symbols
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.err != nil {
		return dto.MarketData{}, f.err
	}
	return f.prices, nil
}

func (f *fakeMarketData) GetMarkets(ctx context.Context, symbols []string, days int) ([]dto.CoinMarket, error) {
	return nil, errors.New("not used")
}

type sentMessage struct {
	userID string
	text   string
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []sentMessage
	err   error
	panic string
}

func (f *fakeNotifier) Notify(ctx context.Context, userID, text string) error {
	if f.panic != "" && userID == f.panic {
		panic("notifier exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{userID: userID, text: text})
	return f.err
}

type alertFixture struct {
	strategy *PriceAlertStrategy
	alerts   repository.AlertRepository
	profiles repository.ProfileRepository
	market   *fakeMarketData
	notifier *fakeNotifier
}

func newAlertFixture(t *testing.T) *alertFixture {
	t.Helper()
	db, err := buntdb.Open(buntdb.InMemory, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{Alert: config.Alert{
		Interval:        time.Minute,
		CycleTimeout:    5 * time.Second,
		FetchTimeout:    time.Second,
		NotifyTimeout:   time.Second,
		DefaultTimezone: "US/Pacific",
	}}

	f := &alertFixture{
		alerts:   repository.NewBuntAlertRepository(db, logger.NewNop()),
		profiles: repository.NewBuntProfileRepository(db),
		market:   &fakeMarketData{prices: dto.MarketData{}},
		notifier: &fakeNotifier{},
	}
	f.strategy = NewPriceAlertStrategy(cfg, logger.NewNop(), f.alerts, f.profiles, f.market, f.notifier)
	f.strategy.now = func() time.Time { return time.Date(2025, 1, 15, 20, 0, 0, 0, time.UTC) }
	return f
}

func (f *alertFixture) add(t *testing.T, userID, coin string, price float64) model.Alert {
	t.Helper()
	alert := model.NewAlert(userID, coin, price)
	require.NoError(t, f.alerts.Add(context.Background(), alert))
	return alert
}

func TestPriceAlert_BelowTargetStillTriggers(t *testing.T) {
	// every alert fires on its first evaluation, whichever side of the target
	// the price is on
	f := newAlertFixture(t)
	f.add(t, "1", "btc", 50000)
	f.market.prices = dto.MarketData{"bitcoin": {USD: 49000}}

	result, err := f.strategy.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_SUCCESS), result.ExitCode)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "1", f.notifier.sent[0].userID)
	assert.Contains(t, f.notifier.sent[0].text, "Alert: BTC has reached $49,000.00 (target: $50,000.00)!")
	assert.Contains(t, f.notifier.sent[0].text, "Cryptiq does not offer financial advice.")

	book, err := f.alerts.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, book)
}

func TestPriceAlert_DuplicateAlertsFireIndependently(t *testing.T) {
	f := newAlertFixture(t)
	first := f.add(t, "1", "btc", 50000)
	second := f.add(t, "1", "btc", 50000)
	require.NotEqual(t, first.ID, second.ID)
	f.market.prices = dto.MarketData{"bitcoin": {USD: 49000}}

	result, err := f.strategy.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_SUCCESS), result.ExitCode)

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, f.notifier.sent[0], f.notifier.sent[1])

	var summary []PriceAlertResult
	require.NoError(t, json.Unmarshal([]byte(result.Output), &summary))
	require.Len(t, summary, 1)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, summary[0].Triggered)
	assert.Equal(t, 2, summary[0].Removed)

	remaining, err := f.alerts.ListByUser(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestShouldTrigger(t *testing.T) {
	tests := []struct {
		current, target float64
	}{
		{49000, 50000},
		{51000, 50000},
		{50000, 50000},
		{0, 10},
		{10, 0},
		{0, 0},
	}
	for _, tt := range tests {
		assert.True(t, shouldTrigger(tt.current, tt.target), "current=%v target=%v", tt.current, tt.target)
	}
}

func TestPriceAlert_BatchesSymbolsAcrossUsers(t *testing.T) {
	f := newAlertFixture(t)
	f.add(t, "1", "btc", 1)
	f.add(t, "1", "eth", 1)
	f.add(t, "2", "BTC", 2)
	f.add(t, "3", "ltc", 3)

	_, err := f.strategy.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.market.calls)
	assert.Equal(t, []string{"btc", "eth", "ltc"}, f.market.symbols)
	assert.Len(t, f.notifier.sent, 4)
}

func TestPriceAlert_EmptiedUsersRemovedOthersKeepUntriggered(t *testing.T) {
	f := newAlertFixture(t)
	f.add(t, "1", "btc", 100)
	f.add(t, "1", "eth", 200)
	f.add(t, "2", "btc", 300)

	var late model.Alert
	f.market.onFetch = func() {
		// set by the user while the cycle is running, not part of this cycle
		late = f.add(t, "2", "sol", 50)
	}

	result, err := f.strategy.Execute(context.Background())
	require.NoError(t, err)

	book, err := f.alerts.LoadAll(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, book, "1")
	require.Len(t, book["2"], 1)
	assert.Equal(t, late.ID, book["2"][0].ID)

	var results []PriceAlertResult
	require.NoError(t, json.Unmarshal([]byte(result.Output), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].UserID)
	assert.Equal(t, 2, results[0].Removed)
	assert.Equal(t, 1, results[1].Removed)
}

func TestPriceAlert_EmptyStoreIsNoop(t *testing.T) {
	f := newAlertFixture(t)

	result, err := f.strategy.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_SKIPPED), result.ExitCode)
	assert.Zero(t, f.market.calls)
	assert.Empty(t, f.notifier.sent)

	book, err := f.alerts.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, book)
}

func TestPriceAlert_NotifyFailureStillRemoves(t *testing.T) {
	f := newAlertFixture(t)
	f.add(t, "1", "btc", 1)
	f.notifier.err = errors.New("chat not found")

	result, err := f.strategy.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_SUCCESS), result.ExitCode)

	list, err := f.alerts.ListByUser(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPriceAlert_FetchFailureKeepsAlerts(t *testing.T) {
	f := newAlertFixture(t)
	f.add(t, "1", "btc", 1)
	f.market.err = errors.New("coingecko down")

	result, err := f.strategy.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_FAILED), result.ExitCode)
	assert.Empty(t, f.notifier.sent)

	list, err := f.alerts.ListByUser(context.Background(), "1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPriceAlert_MissingPriceDefaultsToZero(t *testing.T) {
	f := newAlertFixture(t)
	f.add(t, "1", "notacoin", 10)
	f.market.prices = dto.MarketData{"bitcoin": {USD: 1}}

	_, err := f.strategy.Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].text, "Alert: NOTACOIN has reached $0.00 (target: $10.00)!")
}

func TestPriceAlert_TimeInUserTimezone(t *testing.T) {
	f := newAlertFixture(t)
	profile := model.NewUserProfile("1")
	profile.Timezone = "UTC"
	require.NoError(t, f.profiles.Save(context.Background(), profile))

	f.add(t, "1", "btc", 1)
	f.add(t, "2", "btc", 1)

	_, err := f.strategy.Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 2)
	assert.Contains(t, f.notifier.sent[0].text, "Time: 2025-01-15 08:00 PM UTC")
	assert.Contains(t, f.notifier.sent[1].text, "Time: 2025-01-15 12:00 PM PST", "no profile falls back to US/Pacific")
}

func TestPriceAlert_UserFailureIsIsolated(t *testing.T) {
	f := newAlertFixture(t)
	f.add(t, "1", "btc", 1)
	f.add(t, "2", "btc", 1)
	f.notifier.panic = "1"

	result, err := f.strategy.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_PARTIAL_SUCCESS), result.ExitCode)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "2", f.notifier.sent[0].userID)

	book, err := f.alerts.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, book["1"], 1, "the failed user's alert is retried next cycle")
	assert.NotContains(t, book, "2")
}
