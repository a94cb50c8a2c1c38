package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mural/internal/engine"
	"mural/internal/journal"
	"mural/internal/logging"
	"mural/internal/notifications"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one rotation invocation in-process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := journal.Open(cfg)
			if err != nil {
				logging.WarnWithContext(logger, "journal unavailable", err,
					logging.String(logging.FieldImpact, "this run will not appear in history"))
				store = nil
			}
			if store != nil {
				defer store.Close()
			}

			eng := engine.New(cfg, logger, store, notifications.NewService(cfg))
			status, err := eng.RunOnce(signalCtx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run finished: %s\n", status)
			return nil
		},
	}
}
