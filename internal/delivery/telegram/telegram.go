package telegram

import (
	"context"
	"time"

	"cryptiq/config"
	"cryptiq/internal/service"
	"cryptiq/pkg/cache"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/middleware"
	"cryptiq/pkg/telegram"
	"cryptiq/pkg/utils"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

type TelegramBotHandler struct {
	ctx      context.Context
	cfg      *config.Config
	bot      *telebot.Bot
	log      *logger.Logger
	telegram *telegram.TelegramRateLimiter
	echo     *echo.Echo
	service  *service.Service
	cache    cache.Cache
	wrapper  *middleware.Wrapper
	polling  bool
}

func NewTelegramBotHandler(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	bot *telebot.Bot,
	telegram *telegram.TelegramRateLimiter,
	echo *echo.Echo,
	service *service.Service,
	cache cache.Cache) *TelegramBotHandler {
	return &TelegramBotHandler{
		ctx:      ctx,
		cfg:      cfg,
		log:      log,
		bot:      bot,
		telegram: telegram,
		echo:     echo,
		service:  service,
		cache:    cache,
		wrapper:  middleware.NewWrapper(ctx, log, cfg.Telegram.HandlerTimeout),
	}
}

// Start registers the handlers and begins receiving updates, through the
// webhook route when a webhook URL is configured and by long polling
// otherwise.
func (t *TelegramBotHandler) Start() error {
	t.log.Info("Starting Telegram bot...")
	t.RegisterHandlers()
	t.telegram.StartCleanupExpired(t.ctx)

	if t.cfg.Telegram.WebhookURL != "" {
		t.log.Info("Setting webhook URL", logger.StringField("webhook_url", t.cfg.Telegram.WebhookURL))
		return t.bot.SetWebhook(&telebot.Webhook{
			Endpoint: &telebot.WebhookEndpoint{PublicURL: t.cfg.Telegram.WebhookURL},
		})
	}

	if err := t.bot.RemoveWebhook(); err != nil {
		t.log.Warn("Failed to remove webhook before polling", logger.ErrorField(err))
	}
	t.log.Info("Telegram webhook is disabled, using long polling")
	t.polling = true
	utils.GoSafe(t.bot.Start)
	return nil
}

func (t *TelegramBotHandler) Stop() {
	t.log.Info("Stopping Telegram bot...")

	if t.polling {
		stopDone := make(chan struct{})
		go func() {
			t.bot.Stop()
			close(stopDone)
		}()

		select {
		case <-stopDone:
			t.log.Info("Telegram bot stopped successfully")
		case <-time.After(10 * time.Second):
			t.log.Warn("Timeout while stopping bot, forcing shutdown")
		}
	}

	t.telegram.StopCleanupExpired()
	t.log.Info("Telegram bot shutdown completed")
}
