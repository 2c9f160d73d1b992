package cmd

import (
	"errors"
	"fmt"
	"time"

	"slotbook/config"
	"slotbook/utils"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <externalId>",
		Short: "Mint an actor identity token for a front end gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.AppConfig.JWTSecret == "" {
				return errors.New("JWT_SECRET must be set to mint tokens")
			}
			token, err := utils.IssueActorToken(config.AppConfig.JWTSecret, args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	return cmd
}
