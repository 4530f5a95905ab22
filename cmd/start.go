package cmd

import (
	"context"
	"errors"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"cryptiq/internal/delivery/http"
	"cryptiq/internal/delivery/telegram"
	"cryptiq/internal/service"
	"cryptiq/pkg/logger"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the bot, the HTTP API and the alert scheduler",
	RunE:  Start,
}

func Start(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return err
	}
	defer appDep.Close()

	g, gctx := errgroup.WithContext(ctx)

	services := service.NewService(appDep.cfg, appDep.log, appDep.repo, appDep.telegram)
	httpHandler := http.NewHttpAPIHandler(gctx, appDep.echo, appDep.log, services)
	telegramHandler := telegram.NewTelegramBotHandler(
		gctx,
		appDep.cfg,
		appDep.log,
		appDep.telegramBot,
		appDep.telegram,
		appDep.echo,
		services,
		appDep.cache,
	)
	apiServer := NewHTTPServer(gctx, appDep, httpHandler)

	// the webhook route has to exist before the server starts
	if err := telegramHandler.Start(); err != nil {
		appDep.log.Error("Failed to start telegram bot", logger.ErrorField(err))
		return err
	}

	g.Go(func() error {
		if err := apiServer.Start(); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return services.AlertScheduler.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		appDep.log.Info("Shutting down gracefully...")

		services.AlertScheduler.Stop()
		telegramHandler.Stop()
		return apiServer.Stop()
	})

	if err := g.Wait(); err != nil {
		appDep.log.Error("Stopped with error", logger.ErrorField(err))
		return err
	}
	return nil
}
