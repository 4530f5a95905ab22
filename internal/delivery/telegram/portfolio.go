package telegram

import (
	"bytes"
	"context"
	"errors"
	"strconv"

	"cryptiq/internal/chart"
	"cryptiq/internal/repository"
	"cryptiq/internal/service"
	"cryptiq/pkg/common"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/utils"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handlePortfolio(ctx context.Context, c telebot.Context) error {
	summary, err := t.service.PortfolioService.Summary(ctx, userKey(c))
	switch {
	case errors.Is(err, service.ErrNoProfile):
		return t.send(ctx, c, messageNoPortfolio)
	case errors.Is(err, service.ErrNoHoldings):
		return t.send(ctx, c, messageNoHoldings)
	case errors.Is(err, service.ErrMarketData):
		return t.send(ctx, c, messageNoMarketData)
	case err != nil:
		return err
	}

	profile, err := t.service.ProfileService.Get(ctx, userKey(c))
	if err != nil {
		return err
	}
	if err := t.send(ctx, c, formatPortfolio(summary, profile.Strategy)); err != nil {
		return err
	}

	if png, err := chart.Allocation(summary.Lines); err == nil {
		t.sendChart(ctx, c, png)
	} else if !errors.Is(err, chart.ErrNoData) {
		t.log.WarnContext(ctx, "Failed to render allocation chart", logger.ErrorField(err))
	}

	history, err := t.service.PortfolioService.History(ctx, userKey(c))
	if err != nil {
		t.log.WarnContext(ctx, "Failed to read portfolio history", logger.ErrorField(err))
		return nil
	}
	loc := utils.LoadLocationOr(profile.Timezone, common.DEFAULT_TIMEZONE)
	if png, err := chart.History(history, loc); err == nil {
		t.sendChart(ctx, c, png)
	} else if !errors.Is(err, chart.ErrNotEnoughData) {
		t.log.WarnContext(ctx, "Failed to render history chart", logger.ErrorField(err))
	}
	return nil
}

// sendChart is best effort, the text overview has already been delivered.
func (t *TelegramBotHandler) sendChart(ctx context.Context, c telebot.Context, png []byte) {
	photo := &telebot.Photo{File: telebot.FromReader(bytes.NewReader(png))}
	if err := t.send(ctx, c, photo); err != nil {
		t.log.WarnContext(ctx, "Failed to send chart", logger.ErrorField(err))
	}
}

func (t *TelegramBotHandler) handleAnalytics(ctx context.Context, c telebot.Context) error {
	best, worst, err := t.service.PortfolioService.Analytics(ctx, userKey(c))
	switch {
	case errors.Is(err, service.ErrNoProfile), errors.Is(err, service.ErrNoHoldings):
		return t.send(ctx, c, messageAnalyticsNoHoldings)
	case errors.Is(err, service.ErrNoHistory):
		return t.send(ctx, c, messageAnalyticsNoData)
	case err != nil:
		t.log.WarnContext(ctx, "Failed to compute analytics", logger.ErrorField(err))
		return t.send(ctx, c, messageAnalyticsError)
	}
	return t.send(ctx, c, formatAnalytics(best, worst))
}

func (t *TelegramBotHandler) handleRisk(ctx context.Context, c telebot.Context) error {
	score, err := t.service.PortfolioService.Risk(ctx, userKey(c))
	switch {
	case errors.Is(err, service.ErrNoProfile), errors.Is(err, service.ErrNoHoldings), errors.Is(err, service.ErrNoHoldingsValue):
		return t.send(ctx, c, messageRiskNoValue)
	case err != nil:
		return err
	}
	return t.send(ctx, c, formatRisk(score))
}

func (t *TelegramBotHandler) handleBacktest(ctx context.Context, c telebot.Context) error {
	days, ok := parseBacktestDays(c.Args())
	if !ok {
		return t.send(ctx, c, formatBacktestUsage(repository.SupportedWindows()))
	}

	result, err := t.service.PortfolioService.Backtest(ctx, userKey(c), days)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return t.send(ctx, c, formatBacktestUsage(repository.SupportedWindows()))
	case errors.Is(err, service.ErrNoProfile), errors.Is(err, service.ErrNoHoldings):
		return t.send(ctx, c, messageAnalyticsNoHoldings)
	case errors.Is(err, service.ErrNoHistory):
		return t.send(ctx, c, messageBacktestNoHistory)
	case err != nil:
		t.log.WarnContext(ctx, "Failed to run backtest", logger.ErrorField(err))
		return t.send(ctx, c, messageBacktestError)
	}
	return t.send(ctx, c, formatBacktest(result))
}

// parseBacktestDays reads the optional window argument.
func parseBacktestDays(args []string) (int, bool) {
	if len(args) == 0 {
		return service.DefaultBacktestDays, true
	}
	days, err := strconv.Atoi(args[0])
	if err != nil || days <= 0 {
		return 0, false
	}
	return days, true
}
