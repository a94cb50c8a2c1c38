package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mural/internal/ipc"
	"mural/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			// Prefer the daemon so the test exercises its configuration;
			// fall back to an in-process send when it is not running.
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestNotification()
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, resp.Message)
				return nil
			})
			if err == nil {
				return nil
			}

			cfg, cfgErr := ctx.ensureConfig()
			if cfgErr != nil {
				return cfgErr
			}
			if cfg.Notifications.NtfyTopic == "" {
				fmt.Fprintln(stdout, "ntfy topic not configured")
				return nil
			}
			notifier := notifications.NewService(cfg)
			if err := notifier.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(stdout, "test notification sent")
			return nil
		},
	}
}
