package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cryptiq/internal/service"
	"cryptiq/pkg/logger"

	"github.com/spf13/cobra"
)

var runOnceCmd = &cobra.Command{
	Use:   "run-once",
	Short: "Run a single price alert cycle and exit",
	RunE:  RunAlertsOnce,
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Price alert maintenance",
}

func init() {
	alertsCmd.AddCommand(runOnceCmd)
}

func RunAlertsOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return err
	}
	defer appDep.Close()

	services := service.NewService(appDep.cfg, appDep.log, appDep.repo, appDep.telegram)
	result, err := services.AlertScheduler.RunOnce(ctx)
	appDep.log.Info("Alert cycle finished",
		logger.IntField("exit_code", int(result.ExitCode)),
		logger.StringField("status", result.Status()),
	)
	fmt.Fprintln(cmd.OutOrStdout(), result.Output)
	return err
}
