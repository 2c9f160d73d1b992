package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"slotbook/cmd/bootstrap"
	"slotbook/config"
	"slotbook/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply Postgres migrations or create Mongo indexes for the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			applied, err := bootstrap.Migrate(ctx, config.AppConfig)
			if err != nil {
				return err
			}
			utils.GetLogger().Info("Schema is up to date",
				zap.String("driver", config.AppConfig.StoreDriver),
				zap.Strings("applied", applied),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", len(applied))
			return nil
		},
	}
}
