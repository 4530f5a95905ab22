package service

import (
	"cryptiq/config"
	"cryptiq/internal/repository"
	"cryptiq/internal/strategy"
	"cryptiq/pkg/logger"
)

type Service struct {
	AlertScheduler   AlertScheduler
	AlertService     AlertService
	ProfileService   ProfileService
	PortfolioService PortfolioService
	AssistantService AssistantService
	NewsService      NewsService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	notifier strategy.Notifier,
) *Service {
	priceAlertStrategy := strategy.NewPriceAlertStrategy(cfg, log, repo.AlertRepo, repo.ProfileRepo, repo.MarketDataRepo, notifier)

	return &Service{
		AlertScheduler:   NewAlertScheduler(cfg, log, priceAlertStrategy),
		AlertService:     NewAlertService(log, repo.AlertRepo),
		ProfileService:   NewProfileService(cfg, log, repo.ProfileRepo),
		PortfolioService: NewPortfolioService(cfg, log, repo.ProfileRepo, repo.ChatLogRepo, repo.MarketDataRepo),
		AssistantService: NewAssistantService(cfg, log, repo.ProfileRepo, repo.ChatLogRepo, repo.MarketDataRepo, repo.AIRepo),
		NewsService:      NewNewsService(cfg, repo.NewsRepo),
	}
}
