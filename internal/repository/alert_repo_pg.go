package repository

import (
	"context"
	"fmt"

	"cryptiq/internal/model"

	"gorm.io/gorm"
)

type pgAlertRepository struct {
	db *gorm.DB
}

func NewPgAlertRepository(db *gorm.DB) AlertRepository {
	return &pgAlertRepository{db: db}
}

func (r *pgAlertRepository) LoadAll(ctx context.Context) (model.AlertBook, error) {
	var alerts []model.Alert
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}
	book := model.AlertBook{}
	for _, a := range alerts {
		book[a.UserID] = append(book[a.UserID], a)
	}
	return book, nil
}

func (r *pgAlertRepository) ListByUser(ctx context.Context, userID string) ([]model.Alert, error) {
	var alerts []model.Alert
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at, id").Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts of %s: %w", userID, err)
	}
	return alerts, nil
}

func (r *pgAlertRepository) Add(ctx context.Context, alert model.Alert) error {
	if err := r.db.WithContext(ctx).Create(&alert).Error; err != nil {
		return fmt.Errorf("failed to add alert for %s: %w", alert.UserID, err)
	}
	return nil
}

// RemoveAlerts needs no empty-user cleanup here: a user without rows simply
// has no alerts.
func (r *pgAlertRepository) RemoveAlerts(ctx context.Context, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&model.Alert{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to remove alerts of %s: %w", userID, res.Error)
	}
	return int(res.RowsAffected), nil
}
