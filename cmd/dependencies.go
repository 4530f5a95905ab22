package cmd

import (
	"context"
	"errors"
	"fmt"

	"cryptiq/config"
	"cryptiq/internal/repository"
	"cryptiq/pkg/buntdb"
	"cryptiq/pkg/cache"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/metrics"
	"cryptiq/pkg/postgres"
	"cryptiq/pkg/telegram"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

type AppDependency struct {
	bunt        *buntdb.DB
	db          *postgres.DB
	cfg         *config.Config
	log         *logger.Logger
	echo        *echo.Echo
	cache       cache.Cache
	repo        *repository.Repository
	telegram    *telegram.TelegramRateLimiter
	telegramBot *telebot.Bot
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding, logger.WithTelegramAlert(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	if err != nil {
		return nil, err
	}
	metrics.Init()

	dep := &AppDependency{
		cfg:   cfg,
		log:   log,
		cache: cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
	}

	if err := dep.openStorage(); err != nil {
		log.Error("Failed to open storage", logger.ErrorField(err), logger.StringField("driver", cfg.Storage.Driver))
		_ = dep.Close()
		return nil, err
	}

	pref := telebot.Settings{
		Token:  cfg.Telegram.BotToken,
		Poller: &telebot.LongPoller{Timeout: cfg.Telegram.PollTimeout},
		OnError: func(err error, c telebot.Context) {
			log.Error("Telegram bot error", logger.ErrorField(err))
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Error("Failed to create telegram bot", logger.ErrorField(err))
		_ = dep.Close()
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true

	dep.echo = e
	dep.telegramBot = bot
	dep.telegram = telegram.NewTelegramRateLimiter(&cfg.Telegram, log, bot)
	return dep, nil
}

func (d *AppDependency) openStorage() error {
	var err error
	switch d.cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		d.db, err = postgres.NewDB(d.cfg.DB, d.log)
		if err != nil {
			return err
		}
		d.repo, err = repository.NewPostgresRepository(d.cfg, d.log, d.cache, d.db.DB)
	case config.StorageDriverBunt:
		d.bunt, err = buntdb.Open(d.cfg.Storage.BuntPath, d.log)
		if err != nil {
			return err
		}
		d.repo, err = repository.NewBuntRepository(d.cfg, d.log, d.cache, d.bunt)
	default:
		return fmt.Errorf("unknown storage driver %q", d.cfg.Storage.Driver)
	}
	return err
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	var errs []error
	if d.bunt != nil {
		errs = append(errs, d.bunt.Close())
	}
	if d.db != nil {
		errs = append(errs, d.db.Close())
	}
	_ = d.log.Sync()
	return errors.Join(errs...)
}
