package telegram

import (
	"context"
	"strconv"
	"strings"

	"cryptiq/pkg/logger"

	"gopkg.in/telebot.v3"
)

func userKey(c telebot.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}

func (t *TelegramBotHandler) send(ctx context.Context, c telebot.Context, what interface{}, opts ...interface{}) error {
	_, err := t.telegram.Send(ctx, c, what, opts...)
	return err
}

func (t *TelegramBotHandler) sendAll(ctx context.Context, c telebot.Context, messages []string) error {
	for _, msg := range messages {
		if err := t.send(ctx, c, msg); err != nil {
			return err
		}
	}
	return nil
}

// handleTextMessage routes free text: a pending input first, then a running
// profile setup, and everything else goes to the assistant.
func (t *TelegramBotHandler) handleTextMessage(ctx context.Context, c telebot.Context) error {
	text := strings.TrimSpace(c.Text())
	if strings.HasPrefix(text, "/") {
		return t.send(ctx, c, messageUnknownCommand)
	}

	switch t.userState(c.Sender().ID) {
	case StateWaitingLanguage:
		return t.handleLanguageInput(ctx, c, text)
	case StateWaitingBank:
		return t.handleBankInput(ctx, c, text)
	case StateWaitingHoldings:
		return t.handleHoldingsInput(ctx, c, text)
	case StateWaitingTimezone:
		return t.handleTimezoneInput(ctx, c, text)
	case StateWaitingStrategy:
		return t.handleStrategyInput(ctx, c, text)
	}

	reply, handled, err := t.service.ProfileService.Advance(ctx, userKey(c), text)
	if err != nil {
		return err
	}
	if handled {
		if err := t.sendAll(ctx, c, reply.Messages); err != nil {
			return err
		}
		if reply.Done {
			return t.handleMenu(ctx, c)
		}
		return nil
	}

	return t.handleAskAI(ctx, c, text)
}

func (t *TelegramBotHandler) handleAskAI(ctx context.Context, c telebot.Context, text string) error {
	if err := c.Notify(telebot.Typing); err != nil {
		t.log.DebugContext(ctx, "Failed to send typing action", logger.ErrorField(err))
	}

	answer, err := t.service.AssistantService.Answer(ctx, userKey(c), text)
	if err != nil {
		return err
	}
	return t.send(ctx, c, answer)
}
