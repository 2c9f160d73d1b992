package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"slotbook/cmd/bootstrap"
	"slotbook/config"
	"slotbook/cron"

	"github.com/spf13/cobra"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Deliver queued notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			sender, err := bootstrap.NewSender(ctx, config.AppConfig)
			if err != nil {
				return err
			}
			return cron.RunNotificationWorker(ctx, sender)
		},
	}
}
