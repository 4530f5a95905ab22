package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cryptiq/config"
	"cryptiq/internal/dto"
	"cryptiq/internal/model"
	"cryptiq/internal/repository"
	"cryptiq/pkg/common"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/telegram"
	"cryptiq/pkg/utils"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const DefaultBacktestDays = 30

var (
	ErrNoHoldings      = errors.New("no holdings")
	ErrNoHoldingsValue = errors.New("holdings have no value")
	ErrMarketData      = errors.New("market data unavailable")
	ErrNoHistory       = errors.New("no historical data")
)

type PortfolioService interface {
	// Summary values the user's holdings, compares against the previous check
	// and records this check in the chat log.
	Summary(ctx context.Context, userID string) (*dto.PortfolioSummary, error)
	History(ctx context.Context, userID string) ([]model.PortfolioPoint, error)
	// Analytics returns the best and worst 7 day performer among holdings.
	// Coins without market data are left out.
	Analytics(ctx context.Context, userID string) (best, worst dto.CoinPerformance, err error)
	// Risk returns the share of the largest position in percent.
	Risk(ctx context.Context, userID string) (float64, error)
	Backtest(ctx context.Context, userID string, days int) (*dto.BacktestResult, error)
}

type portfolioService struct {
	cfg            *config.Config
	log            *logger.Logger
	profileRepo    repository.ProfileRepository
	chatLogRepo    repository.ChatLogRepository
	marketDataRepo repository.MarketDataRepository
	now            func() time.Time
}

func NewPortfolioService(
	cfg *config.Config,
	log *logger.Logger,
	profileRepo repository.ProfileRepository,
	chatLogRepo repository.ChatLogRepository,
	marketDataRepo repository.MarketDataRepository,
) PortfolioService {
	return &portfolioService{
		cfg:            cfg,
		log:            log,
		profileRepo:    profileRepo,
		chatLogRepo:    chatLogRepo,
		marketDataRepo: marketDataRepo,
		now:            time.Now,
	}
}

func (s *portfolioService) profile(ctx context.Context, userID string) (*model.UserProfile, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, ErrNoProfile
	}
	return profile, nil
}

// positiveHoldings returns the symbols held in a positive amount, sorted.
func positiveHoldings(h model.Holdings) []string {
	return lo.Filter(h.Symbols(), func(symbol string, _ int) bool { return h[symbol] > 0 })
}

func (s *portfolioService) Summary(ctx context.Context, userID string) (*dto.PortfolioSummary, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	symbols := profile.Holdings.Symbols()
	if len(symbols) == 0 {
		return nil, ErrNoHoldings
	}

	prices, err := s.marketDataRepo.GetPrices(ctx, symbols)
	if err != nil || len(prices) == 0 {
		s.log.WarnContext(ctx, "No market data for portfolio", logger.ErrorField(err), logger.StringField("user_id", userID))
		return nil, ErrMarketData
	}

	summary := &dto.PortfolioSummary{At: s.now()}
	total := decimal.Zero
	for _, symbol := range symbols {
		amount := profile.Holdings[symbol]
		price := prices[common.ResolveCoinID(symbol)]
		value := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(price.USD))
		total = total.Add(value)
		summary.Lines = append(summary.Lines, dto.PortfolioLine{
			Symbol:    symbol,
			Amount:    amount,
			Price:     price.USD,
			Value:     value.InexactFloat64(),
			Change24h: price.USD24hChange,
		})
	}
	summary.Total = total.Round(2).InexactFloat64()

	previous, err := s.chatLogRepo.LastPortfolioValue(ctx, userID)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to read previous portfolio value", logger.ErrorField(err), logger.StringField("user_id", userID))
	}
	if previous != nil && summary.Total > 0 {
		summary.Previous = previous
	}

	err = s.chatLogRepo.Append(ctx, model.ChatLogEntry{
		UserID:         userID,
		Timestamp:      summary.At.UTC(),
		UserMessage:    model.PortfolioCheckMessage,
		BotResponse:    fmt.Sprintf("Portfolio value: %s", telegram.FormatUSD(summary.Total)),
		PortfolioValue: utils.ToPointer(summary.Total),
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to log portfolio check", logger.ErrorField(err), logger.StringField("user_id", userID))
	}
	return summary, nil
}

func (s *portfolioService) History(ctx context.Context, userID string) ([]model.PortfolioPoint, error) {
	return s.chatLogRepo.PortfolioHistory(ctx, userID)
}

func (s *portfolioService) Analytics(ctx context.Context, userID string) (dto.CoinPerformance, dto.CoinPerformance, error) {
	var best, worst dto.CoinPerformance

	profile, err := s.profile(ctx, userID)
	if err != nil {
		return best, worst, err
	}
	symbols := positiveHoldings(profile.Holdings)
	if len(symbols) == 0 {
		return best, worst, ErrNoHoldings
	}

	markets, err := s.marketDataRepo.GetMarkets(ctx, symbols, 7)
	if err != nil {
		return best, worst, fmt.Errorf("%w: %v", ErrMarketData, err)
	}
	changes := marketsByID(markets)

	found := 0
	for _, symbol := range symbols {
		market, ok := changes[common.ResolveCoinID(symbol)]
		if !ok {
			continue
		}
		perf := dto.CoinPerformance{Symbol: symbol, ChangePct7d: market.ChangePercent}
		if found == 0 || perf.ChangePct7d > best.ChangePct7d {
			best = perf
		}
		if found == 0 || perf.ChangePct7d < worst.ChangePct7d {
			worst = perf
		}
		found++
	}
	if found == 0 {
		return best, worst, ErrNoHistory
	}
	return best, worst, nil
}

func (s *portfolioService) Risk(ctx context.Context, userID string) (float64, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return 0, err
	}
	symbols := positiveHoldings(profile.Holdings)
	if len(symbols) == 0 {
		return 0, ErrNoHoldings
	}

	prices, err := s.marketDataRepo.GetPrices(ctx, symbols)
	if err != nil {
		s.log.WarnContext(ctx, "No market data for risk score", logger.ErrorField(err), logger.StringField("user_id", userID))
	}

	total, largest := decimal.Zero, decimal.Zero
	for _, symbol := range symbols {
		value := decimal.NewFromFloat(profile.Holdings[symbol]).Mul(decimal.NewFromFloat(prices.USD(common.ResolveCoinID(symbol))))
		total = total.Add(value)
		if value.GreaterThan(largest) {
			largest = value
		}
	}
	if total.IsZero() {
		return 0, ErrNoHoldingsValue
	}
	return largest.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64(), nil
}

func (s *portfolioService) Backtest(ctx context.Context, userID string, days int) (*dto.BacktestResult, error) {
	if !lo.Contains(repository.SupportedWindows(), days) {
		return nil, fmt.Errorf("%w: backtest supports %s days", ErrInvalidInput, joinInts(repository.SupportedWindows()))
	}

	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	symbols := positiveHoldings(profile.Holdings)
	if len(symbols) == 0 {
		return nil, ErrNoHoldings
	}

	markets, err := s.marketDataRepo.GetMarkets(ctx, symbols, days)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarketData, err)
	}
	byID := marketsByID(markets)

	result := &dto.BacktestResult{Days: days}
	start, end := decimal.Zero, decimal.Zero
	for _, symbol := range symbols {
		market, ok := byID[common.ResolveCoinID(symbol)]
		if !ok {
			result.Missing = append(result.Missing, symbol)
			continue
		}
		amount := decimal.NewFromFloat(profile.Holdings[symbol])
		start = start.Add(amount.Mul(decimal.NewFromFloat(market.StartPrice())))
		end = end.Add(amount.Mul(decimal.NewFromFloat(market.CurrentPrice)))
	}
	if start.IsZero() {
		return nil, ErrNoHistory
	}
	result.StartValue = start.InexactFloat64()
	result.EndValue = end.InexactFloat64()
	return result, nil
}

func marketsByID(markets []dto.CoinMarket) map[string]dto.CoinMarket {
	return lo.KeyBy(markets, func(m dto.CoinMarket) string { return m.ID })
}

func joinInts(values []int) string {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	return strings.Join(lo.Map(sorted, func(v int, _ int) string { return fmt.Sprint(v) }), ", ")
}
