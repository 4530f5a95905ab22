package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cryptiq/config"
	"cryptiq/internal/dto"
	"cryptiq/pkg/cache"
	"cryptiq/pkg/common"
	"cryptiq/pkg/httpclient"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/metrics"

	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	providerCoinGecko = "coingecko"

	// sharedFetchTimeout bounds a collapsed price lookup, which no longer
	// follows the cancellation of the caller that started it.
	sharedFetchTimeout = 30 * time.Second
)

// marketWindows are the change windows /coins/markets understands, by days.
var marketWindows = map[int]string{
	1:   "24h",
	7:   "7d",
	14:  "14d",
	30:  "30d",
	200: "200d",
	365: "1y",
}

// SupportedWindows returns the day counts accepted by GetMarkets, ascending.
func SupportedWindows() []int {
	days := lo.Keys(marketWindows)
	sort.Ints(days)
	return days
}

type MarketDataRepository interface {
	// GetPrices returns USD prices keyed by CoinGecko id for the given
	// symbols. Coins the provider does not know are absent. On failure the
	// returned map is empty, never nil.
	GetPrices(ctx context.Context, symbols []string) (dto.MarketData, error)
	// GetMarkets returns current price and the change over the last days.
	GetMarkets(ctx context.Context, symbols []string, days int) ([]dto.CoinMarket, error)
}

type coinGeckoRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	cache          cache.Cache
	requestLimiter *rate.Limiter
	group          singleflight.Group
}

func NewMarketDataRepository(cfg *config.Config, log *logger.Logger, c cache.Cache) MarketDataRepository {
	perRequest := time.Minute / time.Duration(cfg.CoinGecko.MaxRequestPerMinute)

	return &coinGeckoRepository{
		httpClient: httpclient.New(
			cfg.CoinGecko.BaseURL,
			cfg.CoinGecko.Timeout,
			httpclient.WithHeader("x-cg-demo-api-key", cfg.CoinGecko.APIKey),
			httpclient.WithRetry(2, 500*time.Millisecond),
		),
		cfg:            cfg,
		logger:         log,
		cache:          c,
		requestLimiter: rate.NewLimiter(rate.Every(perRequest), 1),
	}
}

func (r *coinGeckoRepository) GetPrices(ctx context.Context, symbols []string) (dto.MarketData, error) {
	result := dto.MarketData{}
	ids := lo.Uniq(lo.Map(symbols, func(s string, _ int) string { return common.ResolveCoinID(s) }))
	ids = lo.Filter(ids, func(id string, _ int) bool { return id != "" })
	if len(ids) == 0 {
		return result, nil
	}

	var missing []string
	for _, id := range ids {
		if price, ok := cache.GetFromCache[dto.CoinPrice](r.cache, fmt.Sprintf(common.KEY_COIN_PRICE, id)); ok {
			result[id] = price
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}
	sort.Strings(missing)

	key := strings.Join(missing, ",")
	ch := r.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		data, err := r.fetchSimplePrice(fetchCtx, key)
		if err != nil {
			return nil, err
		}
		for id, price := range data {
			r.cache.Set(fmt.Sprintf(common.KEY_COIN_PRICE, id), price, r.cfg.Cache.PriceTTL)
		}
		return data, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		res.Err = ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		r.logger.WarnContext(ctx, "Failed to fetch prices from CoinGecko",
			logger.StringsField("ids", missing),
			logger.ErrorField(res.Err),
		)
		return dto.MarketData{}, res.Err
	}

	for id, price := range res.Val.(dto.MarketData) {
		result[id] = price
	}
	return result, nil
}

func (r *coinGeckoRepository) fetchSimplePrice(ctx context.Context, ids string) (dto.MarketData, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for coingecko limit: %w", err)
	}

	start := time.Now()
	var data dto.MarketData
	resp, err := r.httpClient.Get(ctx, "/simple/price", map[string]string{
		"ids":                 ids,
		"vs_currencies":       "usd",
		"include_24hr_change": "true",
	}, nil, &data)
	if err == nil {
		err = httpclient.CheckStatus(resp)
	}
	metrics.RecordUpstreamCall(providerCoinGecko, "simple_price", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to get simple price: %w", err)
	}
	if data == nil {
		data = dto.MarketData{}
	}
	return data, nil
}

func (r *coinGeckoRepository) GetMarkets(ctx context.Context, symbols []string, days int) ([]dto.CoinMarket, error) {
	window, ok := marketWindows[days]
	if !ok {
		return nil, fmt.Errorf("unsupported window of %d days", days)
	}

	ids := lo.Uniq(lo.Map(symbols, func(s string, _ int) string { return common.ResolveCoinID(s) }))
	if len(ids) == 0 {
		return []dto.CoinMarket{}, nil
	}
	sort.Strings(ids)

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for coingecko limit: %w", err)
	}

	start := time.Now()
	var rows []dto.CoinMarketResponse
	resp, err := r.httpClient.Get(ctx, "/coins/markets", map[string]string{
		"vs_currency":             "usd",
		"ids":                     strings.Join(ids, ","),
		"price_change_percentage": window,
	}, nil, &rows)
	if err == nil {
		err = httpclient.CheckStatus(resp)
	}
	metrics.RecordUpstreamCall(providerCoinGecko, "coins_markets", time.Since(start), err)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to fetch markets from CoinGecko", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to get coin markets: %w", err)
	}

	return lo.Map(rows, func(row dto.CoinMarketResponse, _ int) dto.CoinMarket {
		return row.ToCoinMarket(window)
	}), nil
}
