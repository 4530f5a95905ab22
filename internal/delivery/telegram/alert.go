package telegram

import (
	"context"
	"errors"
	"strconv"

	"cryptiq/internal/service"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleSetAlert(ctx context.Context, c telebot.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return t.send(ctx, c, messageAlertUsage)
	}
	price, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return t.send(ctx, c, messageAlertUsage)
	}

	alert, err := t.service.AlertService.SetAlert(ctx, userKey(c), args[0], price)
	if errors.Is(err, service.ErrInvalidInput) {
		return t.send(ctx, c, messageAlertUsage)
	}
	if err != nil {
		return err
	}
	return t.send(ctx, c, formatAlertSet(alert))
}

func (t *TelegramBotHandler) handleBtnSetAlert(ctx context.Context, c telebot.Context) error {
	return t.send(ctx, c, messageAlertPrompt)
}

func (t *TelegramBotHandler) handleAlerts(ctx context.Context, c telebot.Context) error {
	alerts, err := t.service.AlertService.ListAlerts(ctx, userKey(c))
	if err != nil {
		return err
	}
	return t.send(ctx, c, formatAlerts(alerts))
}
