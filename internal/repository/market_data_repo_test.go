package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cryptiq/config"
	"cryptiq/internal/dto"
	"cryptiq/pkg/cache"
	"cryptiq/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProviderConfig(baseURL string) *config.Config {
	return &config.Config{
		Cache: config.Cache{PriceTTL: time.Minute},
		CoinGecko: config.CoinGecko{
			BaseURL:             baseURL,
			APIKey:              "demo-key",
			Timeout:             time.Second,
			MaxRequestPerMinute: 60000,
		},
		News: config.News{
			BaseURL: baseURL,
			Timeout: time.Second,
			Limit:   2,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestCoinGecko_GetPricesBatchesAndCaches(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum,litecoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "true", r.URL.Query().Get("include_24hr_change"))
		assert.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))
		writeJSON(w, http.StatusOK, `{
			"bitcoin": {"usd": 50000, "usd_24h_change": 1.5},
			"ethereum": {"usd": 3000, "usd_24h_change": -2},
			"litecoin": {"usd": 80, "usd_24h_change": 0}
		}`)
	}))
	defer srv.Close()

	repo := NewMarketDataRepository(newProviderConfig(srv.URL), logger.NewNop(), cache.NewCache(time.Minute, time.Minute))

	data, err := repo.GetPrices(context.Background(), []string{"BTC", "eth", "ltc", "btc"})
	require.NoError(t, err)
	assert.Equal(t, 50000.0, data.USD("bitcoin"))
	assert.Equal(t, -2.0, data["ethereum"].USD24hChange)
	assert.Equal(t, 80.0, data.USD("litecoin"))

	data, err = repo.GetPrices(context.Background(), []string{"btc", "eth", "ltc"})
	require.NoError(t, err)
	assert.Equal(t, 50000.0, data.USD("bitcoin"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second lookup is served from cache")
}

func TestCoinGecko_GetPricesSharedLookupOutlivesCancelledCaller(t *testing.T) {
	var calls int32
	arrived := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		close(arrived)
		<-release
		writeJSON(w, http.StatusOK, `{"bitcoin": {"usd": 42000}}`)
	}))
	defer srv.Close()

	repo := NewMarketDataRepository(newProviderConfig(srv.URL), logger.NewNop(), cache.NewCache(time.Minute, time.Minute))

	// a handler whose timeout fires while the lookup is in flight
	handlerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := repo.GetPrices(handlerCtx, []string{"btc"})
		done <- err
	}()

	<-arrived
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	close(release)

	// the alert cycle asking for the same coin still gets the price
	data, err := repo.GetPrices(context.Background(), []string{"btc"})
	require.NoError(t, err)
	assert.Equal(t, 42000.0, data.USD("bitcoin"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCoinGecko_GetPricesUnknownCoinIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"bitcoin": {"usd": 1}}`)
	}))
	defer srv.Close()

	repo := NewMarketDataRepository(newProviderConfig(srv.URL), logger.NewNop(), cache.NewCache(time.Minute, time.Minute))

	data, err := repo.GetPrices(context.Background(), []string{"btc", "notacoin"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, data.USD("bitcoin"))
	assert.NotContains(t, data, "notacoin")
	assert.Zero(t, data.USD("notacoin"))
}

func TestCoinGecko_GetPricesFailureReturnsEmptyMap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error": "bad request"}`)
	}))
	defer srv.Close()

	repo := NewMarketDataRepository(newProviderConfig(srv.URL), logger.NewNop(), cache.NewCache(time.Minute, time.Minute))

	data, err := repo.GetPrices(context.Background(), []string{"btc"})
	require.Error(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestCoinGecko_GetPricesNoSymbols(t *testing.T) {
	repo := NewMarketDataRepository(newProviderConfig("http://127.0.0.1:0"), logger.NewNop(), cache.NewCache(time.Minute, time.Minute))

	data, err := repo.GetPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, dto.MarketData{}, data)
}

func TestCoinGecko_GetMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "7d", r.URL.Query().Get("price_change_percentage"))
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		writeJSON(w, http.StatusOK, `[
			{"id": "bitcoin", "symbol": "BTC", "current_price": 55000, "price_change_percentage_7d_in_currency": 10},
			{"id": "ethereum", "symbol": "eth", "current_price": 3000, "price_change_percentage_7d_in_currency": null}
		]`)
	}))
	defer srv.Close()

	repo := NewMarketDataRepository(newProviderConfig(srv.URL), logger.NewNop(), cache.NewCache(time.Minute, time.Minute))

	markets, err := repo.GetMarkets(context.Background(), []string{"eth", "btc"}, 7)
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, dto.CoinMarket{ID: "bitcoin", Symbol: "btc", CurrentPrice: 55000, ChangePercent: 10}, markets[0])
	assert.Equal(t, 0.0, markets[1].ChangePercent)
	assert.InDelta(t, 50000, markets[0].StartPrice(), 0.001)
}

func TestCoinGecko_GetMarketsRejectsUnknownWindow(t *testing.T) {
	repo := NewMarketDataRepository(newProviderConfig("http://127.0.0.1:0"), logger.NewNop(), cache.NewCache(time.Minute, time.Minute))

	_, err := repo.GetMarkets(context.Background(), []string{"btc"}, 3)
	assert.Error(t, err)
	assert.Equal(t, []int{1, 7, 14, 30, 200, 365}, SupportedWindows())
}

func TestNews_LatestLimitsAndCaches(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/data/v2/news/", r.URL.Path)
		assert.Equal(t, "EN", r.URL.Query().Get("lang"))
		writeJSON(w, http.StatusOK, `{"Type": 100, "Message": "News list successfully returned", "Data": [
			{"id": "1", "title": "First", "url": "https://a.example/1", "source": "a"},
			{"id": "2", "title": "Second", "url": "https://a.example/2", "source": "a"},
			{"id": "3", "title": "Third", "url": "https://a.example/3", "source": "b"}
		]}`)
	}))
	defer srv.Close()

	repo := NewNewsRepository(newProviderConfig(srv.URL), logger.NewNop(), cache.NewCache(time.Minute, time.Minute))

	articles, err := repo.Latest(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "First", articles[0].Title)

	_, err = repo.Latest(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNews_LatestFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{}`)
	}))
	defer srv.Close()

	repo := NewNewsRepository(newProviderConfig(srv.URL), logger.NewNop(), cache.NewCache(time.Minute, time.Minute))

	_, err := repo.Latest(context.Background(), 5)
	assert.Error(t, err)
}
