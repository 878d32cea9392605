package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
)

func newRootCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "aroeira-team",
		Short:         "Aroeira Team backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yaml when present)")

	cmd.AddCommand(
		newServeCommand(&configFile),
		newReconcileCommand(&configFile),
		newSetRoleCommand(&configFile),
	)
	return cmd
}

func main() {
	defer logger.Sync()

	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		logger.L().Sugar().Errorf("aroeira-team: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}
