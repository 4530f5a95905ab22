package repository

import (
	"fmt"

	"cryptiq/config"
	"cryptiq/pkg/buntdb"
	"cryptiq/pkg/cache"
	"cryptiq/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	ProfileRepo    ProfileRepository
	AlertRepo      AlertRepository
	ChatLogRepo    ChatLogRepository
	MarketDataRepo MarketDataRepository
	NewsRepo       NewsRepository
	AIRepo         AIRepository
}

// NewBuntRepository wires the buntdb backed stores with the remote providers.
func NewBuntRepository(cfg *config.Config, log *logger.Logger, c cache.Cache, db *buntdb.DB) (*Repository, error) {
	repo, err := newProviderRepository(cfg, log, c)
	if err != nil {
		return nil, err
	}
	repo.ProfileRepo = NewBuntProfileRepository(db)
	repo.AlertRepo = NewBuntAlertRepository(db, log)
	repo.ChatLogRepo = NewBuntChatLogRepository(db)
	return repo, nil
}

// NewPostgresRepository wires the gorm backed stores with the remote providers.
func NewPostgresRepository(cfg *config.Config, log *logger.Logger, c cache.Cache, db *gorm.DB) (*Repository, error) {
	repo, err := newProviderRepository(cfg, log, c)
	if err != nil {
		return nil, err
	}
	repo.ProfileRepo = NewPgProfileRepository(db)
	repo.AlertRepo = NewPgAlertRepository(db)
	repo.ChatLogRepo = NewPgChatLogRepository(db)
	return repo, nil
}

func newProviderRepository(cfg *config.Config, log *logger.Logger, c cache.Cache) (*Repository, error) {
	aiRepo, err := NewGeminiAIRepository(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create ai repository: %w", err)
	}
	return &Repository{
		MarketDataRepo: NewMarketDataRepository(cfg, log, c),
		NewsRepo:       NewNewsRepository(cfg, log, c),
		AIRepo:         aiRepo,
	}, nil
}
