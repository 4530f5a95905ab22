package service

import (
	"context"

	"cryptiq/config"
	"cryptiq/internal/dto"
	"cryptiq/internal/repository"
)

type NewsService interface {
	Latest(ctx context.Context) ([]dto.NewsArticle, error)
}

type newsService struct {
	cfg      *config.Config
	newsRepo repository.NewsRepository
}

func NewNewsService(cfg *config.Config, newsRepo repository.NewsRepository) NewsService {
	return &newsService{cfg: cfg, newsRepo: newsRepo}
}

func (s *newsService) Latest(ctx context.Context) ([]dto.NewsArticle, error) {
	return s.newsRepo.Latest(ctx, s.cfg.News.Limit)
}
