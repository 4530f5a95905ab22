package repository

import (
	"context"
	"fmt"
	"time"

	"cryptiq/config"
	"cryptiq/internal/dto"
	"cryptiq/pkg/cache"
	"cryptiq/pkg/common"
	"cryptiq/pkg/httpclient"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/metrics"
)

const (
	providerCryptoCompare = "cryptocompare"
	newsCacheTTL          = 5 * time.Minute
)

type NewsRepository interface {
	Latest(ctx context.Context, limit int) ([]dto.NewsArticle, error)
}

type cryptoCompareNewsRepository struct {
	httpClient httpclient.HTTPClient
	logger     *logger.Logger
	cache      cache.Cache
}

func NewNewsRepository(cfg *config.Config, log *logger.Logger, c cache.Cache) NewsRepository {
	return &cryptoCompareNewsRepository{
		httpClient: httpclient.New(cfg.News.BaseURL, cfg.News.Timeout, httpclient.WithRetry(1, time.Second)),
		logger:     log,
		cache:      c,
	}
}

func (r *cryptoCompareNewsRepository) Latest(ctx context.Context, limit int) ([]dto.NewsArticle, error) {
	cacheKey := fmt.Sprintf(common.KEY_CRYPTO_NEWS, limit)
	if articles, ok := cache.GetFromCache[[]dto.NewsArticle](r.cache, cacheKey); ok {
		return articles, nil
	}

	start := time.Now()
	var result dto.NewsResponse
	resp, err := r.httpClient.Get(ctx, "/data/v2/news/", map[string]string{"lang": "EN"}, nil, &result)
	if err == nil {
		err = httpclient.CheckStatus(resp)
	}
	metrics.RecordUpstreamCall(providerCryptoCompare, "news", time.Since(start), err)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to fetch news", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to get news: %w", err)
	}

	articles := result.Data
	if len(articles) > limit {
		articles = articles[:limit]
	}
	r.cache.Set(cacheKey, articles, newsCacheTTL)
	return articles, nil
}
