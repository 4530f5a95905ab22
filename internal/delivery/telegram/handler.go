package telegram

import (
	"context"
	"net/http"

	"cryptiq/internal/dto"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/middleware"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) RegisterHandlers() {
	if t.cfg.Telegram.WebhookURL != "" {
		t.echo.POST("/api/v1/telegram/webhook", t.handleWebhook)
	}

	w := t.wrapper
	t.bot.Handle("/start", w.WithContext("start", t.handleStart))
	t.bot.Handle("/help", w.WithContext("help", t.handleHelp))
	t.bot.Handle("/menu", w.WithContext("menu", t.handleMenu))
	t.bot.Handle("/cancel", w.WithContext("cancel", t.handleCancel))
	t.bot.Handle("/portfolio", w.WithContext("portfolio", t.handlePortfolio))
	t.bot.Handle("/setbank", w.WithContext("setbank", t.handleSetBank))
	t.bot.Handle("/setholdings", w.WithContext("setholdings", t.handleSetHoldings))
	t.bot.Handle("/setstrategy", w.WithContext("setstrategy", t.handleSetStrategy))
	t.bot.Handle("/setalert", w.WithContext("setalert", t.handleSetAlert))
	t.bot.Handle("/alerts", w.WithContext("alerts", t.handleAlerts))
	t.bot.Handle("/news", w.WithContext("news", t.handleNews))
	t.bot.Handle("/deleteprofile", w.WithContext("deleteprofile", t.handleDeleteProfile))
	t.bot.Handle("/settings", w.WithContext("settings", t.handleSettings))
	t.bot.Handle("/language", w.WithContext("language", t.handleLanguage))
	t.bot.Handle("/analytics", w.WithContext("analytics", t.handleAnalytics))
	t.bot.Handle("/risk", w.WithContext("risk", t.handleRisk))
	t.bot.Handle("/backtest", w.WithContext("backtest", t.handleBacktest))

	t.bot.Handle(&btnPortfolio, w.WithContext("btn_portfolio", t.callback(t.handlePortfolio)))
	t.bot.Handle(&btnUpdateBank, w.WithContext("btn_update_bank", t.callback(t.handleBtnUpdateBank)))
	t.bot.Handle(&btnUpdateHoldings, w.WithContext("btn_update_holdings", t.callback(t.handleBtnUpdateHoldings)))
	t.bot.Handle(&btnSetAlert, w.WithContext("btn_set_alert", t.callback(t.handleBtnSetAlert)))
	t.bot.Handle(&btnShowNews, w.WithContext("btn_show_news", t.callback(t.handleNews)))
	t.bot.Handle(&btnSettings, w.WithContext("btn_settings", t.callback(t.handleSettings)))
	t.bot.Handle(&btnDeleteProfile, w.WithContext("btn_delete_profile", t.callback(t.handleDeleteProfile)))
	t.bot.Handle(&btnChangeLanguage, w.WithContext("btn_change_language", t.callback(t.handleLanguage)))
	t.bot.Handle(&btnChangeTimezone, w.WithContext("btn_change_timezone", t.callback(t.handleBtnChangeTimezone)))
	t.bot.Handle(&btnChangeStrategy, w.WithContext("btn_change_strategy", t.callback(t.handleBtnChangeStrategy)))
	t.bot.Handle(&btnMainMenu, w.WithContext("btn_main_menu", t.callback(t.handleMenu)))

	t.bot.Handle(telebot.OnText, w.WithContext("text", t.handleTextMessage))
}

func (t *TelegramBotHandler) handleWebhook(c echo.Context) error {
	var update telebot.Update
	if err := c.Bind(&update); err != nil {
		t.log.ErrorContext(t.ctx, "Cannot bind JSON", logger.ErrorField(err))
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	t.bot.ProcessUpdate(update)
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "ok", nil))
}

// callback acknowledges the button press before running handler, so the
// client stops its spinner even when handler is slow.
func (t *TelegramBotHandler) callback(handler middleware.Handler) middleware.Handler {
	return func(ctx context.Context, c telebot.Context) error {
		if err := t.telegram.Respond(ctx, c); err != nil {
			t.log.WarnContext(ctx, "Failed to answer callback", logger.ErrorField(err))
		}
		return handler(ctx, c)
	}
}

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	t.ResetUserState(c.Sender().ID)

	reply, started, err := t.service.ProfileService.Start(ctx, userKey(c))
	if err != nil {
		return err
	}
	if !started {
		return t.handleMenu(ctx, c)
	}
	return t.sendAll(ctx, c, reply.Messages)
}

func (t *TelegramBotHandler) handleHelp(ctx context.Context, c telebot.Context) error {
	return t.send(ctx, c, messageHelp)
}

func (t *TelegramBotHandler) handleMenu(ctx context.Context, c telebot.Context) error {
	return t.send(ctx, c, messageMainMenu, mainMenuMarkup())
}

func (t *TelegramBotHandler) handleCancel(ctx context.Context, c telebot.Context) error {
	pending := t.userState(c.Sender().ID) != StateIdle
	t.ResetUserState(c.Sender().ID)

	cancelled, err := t.service.ProfileService.CancelOnboarding(ctx, userKey(c))
	if err != nil {
		return err
	}
	if !cancelled && !pending {
		return t.send(ctx, c, messageNothingToCancel)
	}
	return t.send(ctx, c, messageCancelled, removeKeyboard())
}
