package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"digitarr/internal/daemon"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the release check (once, or daily when run_time is set)",
		RunE: func(cmd *cobra.Command, args []string) error {
			chk, cfg, err := ctx.buildChecker()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			scheduler := daemon.New(cfg, chk, logger)
			return scheduler.Run(signalCtx)
		},
	}
}
