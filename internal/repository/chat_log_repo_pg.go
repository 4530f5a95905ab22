package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cryptiq/internal/model"
	"cryptiq/pkg/utils"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

type pgChatLogRepository struct {
	db *gorm.DB
}

func NewPgChatLogRepository(db *gorm.DB) ChatLogRepository {
	return &pgChatLogRepository{db: db}
}

func (r *pgChatLogRepository) Append(ctx context.Context, entry model.ChatLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append chat log of %s: %w", entry.UserID, err)
	}
	return nil
}

func (r *pgChatLogRepository) Recent(ctx context.Context, userID string, n int) ([]model.ChatLogEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	var entries []model.ChatLogEntry
	err := utils.ApplyOptions(r.db.WithContext(ctx),
		utils.WithOrder("logged_at DESC, id DESC"),
		utils.WithLimit(n),
	).Where("user_id = ? AND portfolio_value IS NULL", userID).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read chat log of %s: %w", userID, err)
	}
	return lo.Reverse(entries), nil
}

func (r *pgChatLogRepository) LastPortfolioValue(ctx context.Context, userID string) (*float64, error) {
	var entry model.ChatLogEntry
	err := utils.ApplyOptions(r.db.WithContext(ctx), utils.WithOrder("logged_at DESC, id DESC")).
		Where("user_id = ? AND portfolio_value IS NOT NULL", userID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chat log of %s: %w", userID, err)
	}
	return entry.PortfolioValue, nil
}

func (r *pgChatLogRepository) PortfolioHistory(ctx context.Context, userID string) ([]model.PortfolioPoint, error) {
	var entries []model.ChatLogEntry
	err := utils.ApplyOptions(r.db.WithContext(ctx), utils.WithOrder("logged_at, id")).
		Where("user_id = ? AND portfolio_value IS NOT NULL", userID).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read chat log of %s: %w", userID, err)
	}
	return lo.Map(entries, func(e model.ChatLogEntry, _ int) model.PortfolioPoint {
		return model.PortfolioPoint{Timestamp: e.Timestamp, Value: *e.PortfolioValue}
	}), nil
}
