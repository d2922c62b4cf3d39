package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"digitarr/internal/services/overseerr"
	"digitarr/internal/services/riven"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connectivity to the configured services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cfg.OverseerrEnabled() {
				client, err := overseerr.New(cfg.Overseerr)
				if err != nil {
					return err
				}
				version, err := client.Status(cmd.Context())
				if err != nil {
					fmt.Fprintf(out, "Overseerr: unreachable (%v)\n", err)
				} else {
					fmt.Fprintf(out, "Overseerr: ok (version %s)\n", version)
				}
			} else {
				fmt.Fprintln(out, "Overseerr: not configured")
			}

			if cfg.RivenEnabled() {
				client, err := riven.New(cfg.Riven, logger)
				if err != nil {
					return err
				}
				if err := client.Health(cmd.Context()); err != nil {
					fmt.Fprintf(out, "Riven: unreachable (%v)\n", err)
				} else {
					fmt.Fprintln(out, "Riven: ok")
				}
			} else {
				fmt.Fprintln(out, "Riven: not configured")
			}

			fmt.Fprintf(out, "Discord notifications: %s\n", yesNo(cfg.DiscordEnabled()))
			return nil
		},
	}
}
