package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cryptiq/config"
	"cryptiq/internal/dto"
	"cryptiq/internal/model"
	"cryptiq/internal/repository"
	"cryptiq/pkg/common"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/metrics"
	"cryptiq/pkg/telegram"
	"cryptiq/pkg/utils"
)

// PriceAlertStrategy runs one alert evaluation cycle: fetch prices for every
// coin someone watches, notify the owners of fired alerts and delete those
// alerts.
type PriceAlertStrategy struct {
	cfg            *config.Config
	logger         *logger.Logger
	alertRepo      repository.AlertRepository
	profileRepo    repository.ProfileRepository
	marketDataRepo repository.MarketDataRepository
	notifier       Notifier
	now            func() time.Time
}

// PriceAlertResult is the per user summary of a cycle.
type PriceAlertResult struct {
	UserID    string   `json:"user_id"`
	Triggered []string `json:"triggered,omitempty"`
	Removed   int      `json:"removed"`
	Errors    string   `json:"errors,omitempty"`
}

func NewPriceAlertStrategy(
	cfg *config.Config,
	log *logger.Logger,
	alertRepo repository.AlertRepository,
	profileRepo repository.ProfileRepository,
	marketDataRepo repository.MarketDataRepository,
	notifier Notifier) *PriceAlertStrategy {
	return &PriceAlertStrategy{
		cfg:            cfg,
		logger:         log,
		alertRepo:      alertRepo,
		profileRepo:    profileRepo,
		marketDataRepo: marketDataRepo,
		notifier:       notifier,
		now:            time.Now,
	}
}

func (s *PriceAlertStrategy) GetType() JobType {
	return JobTypePriceAlert
}

func (s *PriceAlertStrategy) Execute(ctx context.Context) (result JobResult, err error) {
	start := time.Now()
	triggered := 0
	defer func() {
		metrics.RecordAlertCycle(result.Status(), time.Since(start), triggered)
	}()

	if s.cfg.Alert.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Alert.CycleTimeout)
		defer cancel()
	}

	book, err := s.alertRepo.LoadAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load alerts", logger.ErrorField(err))
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to load alerts: %v", err)}, err
	}
	userIDs := book.UserIDs()
	if len(userIDs) == 0 {
		return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: "[]"}, nil
	}

	prices, err := s.fetchPrices(ctx, book.Symbols())
	if err != nil {
		// a failed fetch would read as $0 for every coin and fire everything
		s.logger.ErrorContext(ctx, "Failed to fetch prices, alerts kept for next cycle", logger.ErrorField(err))
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to fetch prices: %v", err)}, err
	}

	var (
		results []PriceAlertResult
		failed  int
	)
	for _, userID := range userIDs {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}

		res := PriceAlertResult{UserID: userID}
		errUser := utils.SafeCall(func() error {
			return s.processUser(ctx, userID, book[userID], prices, &res)
		})
		if errUser != nil {
			s.logger.ErrorContext(ctx, "Failed to process alerts of user", logger.ErrorField(errUser), logger.StringField("user_id", userID))
			res.Errors = errUser.Error()
			failed++
		}
		triggered += len(res.Triggered)
		results = append(results, res)
	}

	resultJSON, err := json.Marshal(results)
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to marshal results: %v", err)}, fmt.Errorf("failed to marshal results: %w", err)
	}

	exitCode := int32(JOB_EXIT_CODE_SUCCESS)
	switch {
	case failed > 0 && failed == len(results):
		exitCode = JOB_EXIT_CODE_FAILED
	case failed > 0 || len(results) < len(userIDs):
		exitCode = JOB_EXIT_CODE_PARTIAL_SUCCESS
	}

	s.logger.InfoContext(ctx, "Alert cycle finished",
		logger.IntField("users", len(results)),
		logger.IntField("triggered", triggered),
		logger.IntField("failed", failed),
		logger.DurationField("duration", time.Since(start)),
	)
	return JobResult{ExitCode: exitCode, Output: string(resultJSON)}, nil
}

func (s *PriceAlertStrategy) fetchPrices(ctx context.Context, symbols []string) (dto.MarketData, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Alert.FetchTimeout)
	defer cancel()
	return s.marketDataRepo.GetPrices(ctx, symbols)
}

func (s *PriceAlertStrategy) processUser(ctx context.Context, userID string, alerts []model.Alert, prices dto.MarketData, res *PriceAlertResult) error {
	loc := s.userLocation(ctx, userID)

	for _, alert := range alerts {
		current := prices.USD(common.ResolveCoinID(alert.Coin))
		if !shouldTrigger(current, alert.Price) {
			continue
		}

		message := telegram.FormatPriceAlert(alert.Coin, current, alert.Price, s.now().In(loc))
		s.notify(ctx, userID, message)
		res.Triggered = append(res.Triggered, alert.ID)
	}

	if len(res.Triggered) == 0 {
		return nil
	}
	removed, err := s.alertRepo.RemoveAlerts(ctx, userID, res.Triggered)
	res.Removed = removed
	if err != nil {
		return fmt.Errorf("failed to remove triggered alerts: %w", err)
	}
	return nil
}

// notify swallows delivery failures, a fired alert is removed either way.
func (s *PriceAlertStrategy) notify(ctx context.Context, userID, message string) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Alert.NotifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, userID, message); err != nil {
		s.logger.WarnContext(ctx, "Failed to send price alert", logger.ErrorField(err), logger.StringField("user_id", userID))
	}
}

func (s *PriceAlertStrategy) userLocation(ctx context.Context, userID string) *time.Location {
	timezone := ""
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to get profile for alert timezone", logger.ErrorField(err), logger.StringField("user_id", userID))
	}
	if profile != nil {
		timezone = profile.Timezone
	}
	fallback := s.cfg.Alert.DefaultTimezone
	if fallback == "" {
		fallback = common.DEFAULT_TIMEZONE
	}
	return utils.LoadLocationOr(timezone, fallback)
}

// shouldTrigger keeps the historical comparison, which holds for every pair
// of prices, so each alert fires on the first cycle after it is set.
// TODO: decide between a crossing check against the price at creation time
// and a one-sided target before changing this.
func shouldTrigger(current, target float64) bool {
	return current >= target || current <= target
}
