package service

import (
	"context"
	"fmt"
	"strings"

	"cryptiq/internal/model"
	"cryptiq/internal/repository"
	"cryptiq/pkg/logger"
)

type AlertService interface {
	SetAlert(ctx context.Context, userID, coin string, price float64) (model.Alert, error)
	ListAlerts(ctx context.Context, userID string) ([]model.Alert, error)
}

type alertService struct {
	log       *logger.Logger
	alertRepo repository.AlertRepository
}

func NewAlertService(log *logger.Logger, alertRepo repository.AlertRepository) AlertService {
	return &alertService{log: log, alertRepo: alertRepo}
}

func (s *alertService) SetAlert(ctx context.Context, userID, coin string, price float64) (model.Alert, error) {
	if strings.TrimSpace(coin) == "" || !isFinite(price) || price < 0 {
		return model.Alert{}, fmt.Errorf("%w: alert needs a coin and a non-negative price", ErrInvalidInput)
	}

	alert := model.NewAlert(userID, coin, price)
	if err := s.alertRepo.Add(ctx, alert); err != nil {
		s.log.ErrorContext(ctx, "Failed to save alert", logger.ErrorField(err), logger.StringField("user_id", userID))
		return model.Alert{}, err
	}
	s.log.InfoContext(ctx, "Alert set",
		logger.StringField("user_id", userID),
		logger.StringField("coin", alert.Coin),
		logger.Float64Field("price", price),
	)
	return alert, nil
}

func (s *alertService) ListAlerts(ctx context.Context, userID string) ([]model.Alert, error) {
	return s.alertRepo.ListByUser(ctx, userID)
}
