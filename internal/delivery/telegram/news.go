package telegram

import (
	"context"

	"cryptiq/internal/dto"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/telegram"

	"github.com/samber/lo"
	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleNews(ctx context.Context, c telebot.Context) error {
	articles, err := t.service.NewsService.Latest(ctx)
	if err != nil {
		t.log.WarnContext(ctx, "Failed to fetch news", logger.ErrorField(err))
		return t.send(ctx, c, messageNewsError)
	}

	items := lo.Map(articles, func(a dto.NewsArticle, _ int) telegram.NewsItem {
		return telegram.NewsItem{Title: a.Title, URL: a.URL}
	})
	return t.send(ctx, c, telegram.FormatNews(items), &telebot.SendOptions{
		ParseMode:             telebot.ModeHTML,
		DisableWebPagePreview: true,
	})
}
