package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"cryptiq/internal/dto"
	"cryptiq/internal/model"
	"cryptiq/internal/service"
	"cryptiq/pkg/logger"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleSetBank(ctx context.Context, c telebot.Context) error {
	payload := strings.TrimSpace(c.Message().Payload)
	if payload == "" {
		return t.send(ctx, c, messageBankUsage)
	}
	return t.saveBank(ctx, c, payload)
}

func (t *TelegramBotHandler) handleBtnUpdateBank(ctx context.Context, c telebot.Context) error {
	t.setUserState(c.Sender().ID, StateWaitingBank)
	return t.send(ctx, c, messageBankPrompt)
}

func (t *TelegramBotHandler) handleBankInput(ctx context.Context, c telebot.Context, text string) error {
	if !strings.ContainsAny(text, "0123456789") {
		return t.send(ctx, c, messageBankNoNumber)
	}
	return t.saveBank(ctx, c, text)
}

func (t *TelegramBotHandler) saveBank(ctx context.Context, c telebot.Context, text string) error {
	amount, err := service.ParseBankAmount(text)
	if err != nil {
		return t.send(ctx, c, messageBankParseError)
	}
	if err := t.service.ProfileService.SetBank(ctx, userKey(c), amount); err != nil {
		return err
	}
	t.ResetUserState(c.Sender().ID)
	return t.send(ctx, c, formatBankSet(amount))
}

func (t *TelegramBotHandler) handleSetHoldings(ctx context.Context, c telebot.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return t.send(ctx, c, messageHoldingsUsage)
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return t.send(ctx, c, messageHoldingsUsage)
	}
	return t.saveHolding(ctx, c, args[0], amount, messageHoldingsUsage)
}

func (t *TelegramBotHandler) handleBtnUpdateHoldings(ctx context.Context, c telebot.Context) error {
	t.setUserState(c.Sender().ID, StateWaitingHoldings)
	return t.send(ctx, c, messageHoldingsPrompt)
}

func (t *TelegramBotHandler) handleHoldingsInput(ctx context.Context, c telebot.Context, text string) error {
	coin, amount, ok, err := service.ParseHolding(text)
	if !ok || err != nil {
		return t.send(ctx, c, messageHoldingsParseError)
	}
	return t.saveHolding(ctx, c, coin, amount, messageHoldingsParseError)
}

func (t *TelegramBotHandler) saveHolding(ctx context.Context, c telebot.Context, coin string, amount float64, invalid string) error {
	err := t.service.ProfileService.SetHolding(ctx, userKey(c), coin, amount)
	if errors.Is(err, service.ErrInvalidInput) {
		return t.send(ctx, c, invalid)
	}
	if err != nil {
		return err
	}
	t.ResetUserState(c.Sender().ID)
	return t.send(ctx, c, formatHoldingSet(coin, amount))
}

func (t *TelegramBotHandler) handleSetStrategy(ctx context.Context, c telebot.Context) error {
	payload := strings.TrimSpace(c.Message().Payload)
	if payload == "" {
		return t.send(ctx, c, messageStrategyUsage)
	}
	return t.saveStrategy(ctx, c, payload)
}

func (t *TelegramBotHandler) handleBtnChangeStrategy(ctx context.Context, c telebot.Context) error {
	t.setUserState(c.Sender().ID, StateWaitingStrategy)
	return t.send(ctx, c, messageStrategyPrompt)
}

func (t *TelegramBotHandler) handleStrategyInput(ctx context.Context, c telebot.Context, text string) error {
	if text == "" {
		return t.send(ctx, c, messageStrategyPrompt)
	}
	return t.saveStrategy(ctx, c, text)
}

func (t *TelegramBotHandler) saveStrategy(ctx context.Context, c telebot.Context, strategy string) error {
	if err := t.service.ProfileService.SetStrategy(ctx, userKey(c), strategy); err != nil {
		return err
	}
	t.ResetUserState(c.Sender().ID)
	return t.send(ctx, c, messageStrategyUpdated)
}

func (t *TelegramBotHandler) handleSettings(ctx context.Context, c telebot.Context) error {
	profile, err := t.service.ProfileService.Get(ctx, userKey(c))
	if errors.Is(err, service.ErrNoProfile) {
		profile = model.NewUserProfile(userKey(c))
	} else if err != nil {
		return err
	}
	return t.send(ctx, c, formatSettings(profile), settingsMarkup())
}

func (t *TelegramBotHandler) handleLanguage(ctx context.Context, c telebot.Context) error {
	t.setUserState(c.Sender().ID, StateWaitingLanguage)
	return t.send(ctx, c, messageChooseLanguage, languageMarkup())
}

func (t *TelegramBotHandler) handleLanguageInput(ctx context.Context, c telebot.Context, text string) error {
	t.ResetUserState(c.Sender().ID)

	language, ok := dto.FindLanguage(text)
	if !ok {
		return t.send(ctx, c, messageLanguageUnknown, removeKeyboard())
	}
	if err := t.service.ProfileService.SetLanguage(ctx, userKey(c), language); err != nil {
		return err
	}
	return t.send(ctx, c, formatLanguageSet(language), removeKeyboard())
}

func (t *TelegramBotHandler) handleBtnChangeTimezone(ctx context.Context, c telebot.Context) error {
	t.setUserState(c.Sender().ID, StateWaitingTimezone)
	return t.send(ctx, c, messageTimezonePrompt)
}

func (t *TelegramBotHandler) handleTimezoneInput(ctx context.Context, c telebot.Context, text string) error {
	err := t.service.ProfileService.SetTimezone(ctx, userKey(c), text)
	if errors.Is(err, service.ErrInvalidInput) {
		return t.send(ctx, c, messageTimezoneUnknown)
	}
	if err != nil {
		return err
	}
	t.ResetUserState(c.Sender().ID)
	return t.send(ctx, c, formatTimezoneSet(text))
}

func (t *TelegramBotHandler) handleDeleteProfile(ctx context.Context, c telebot.Context) error {
	t.ResetUserState(c.Sender().ID)

	existed, err := t.service.ProfileService.Delete(ctx, userKey(c))
	switch {
	case err != nil:
		t.log.ErrorContext(ctx, "Failed to delete profile", logger.ErrorField(err))
		return t.send(ctx, c, messageDeleteProfileError)
	case !existed:
		return t.send(ctx, c, messageNoProfileToDelete)
	}
	return t.send(ctx, c, messageProfileDeleted)
}
