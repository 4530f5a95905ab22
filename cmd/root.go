package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cryptiq",
	Short: "Telegram crypto portfolio assistant",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(alertsCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
