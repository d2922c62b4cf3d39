package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"digitarr/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			service := notifications.NewService(cfg, logger)
			if !service.Enabled() {
				fmt.Fprintln(cmd.OutOrStdout(), "Notifications not configured; set discord.webhook_url")
				return nil
			}
			if err := service.TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
