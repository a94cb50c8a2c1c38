package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mural/internal/ipc"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the murald background process",
	}
	daemonCmd.AddCommand(newDaemonStartCommand(ctx))
	daemonCmd.AddCommand(newDaemonStopCommand(ctx))
	daemonCmd.AddCommand(newDaemonStatusCommand(ctx))
	return daemonCmd
}

func newDaemonStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Launch murald in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			if client, err := ctx.dialClient(); err == nil {
				client.Close()
				fmt.Fprintln(stdout, "Daemon already running")
				return nil
			}

			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			launchArgs := []string{}
			if ctx.configFlag != nil {
				if path := strings.TrimSpace(*ctx.configFlag); path != "" {
					launchArgs = append(launchArgs, "--config", path)
				}
			}
			proc := exec.Command(exe, launchArgs...)
			proc.Stdout = nil
			proc.Stderr = nil
			if err := proc.Start(); err != nil {
				return fmt.Errorf("launch %s: %w", exe, err)
			}
			if err := proc.Process.Release(); err != nil {
				return fmt.Errorf("detach daemon process: %w", err)
			}
			fmt.Fprintln(stdout, "Daemon not running, launching...")

			if err := waitForSocket(ctx, 10*time.Second); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Daemon started")
			return nil
		},
	}
}

func newDaemonStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the murald background process",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if resp.Stopped {
					fmt.Fprintln(stdout, "Daemon stopping")
				}
				return nil
			})
			if err != nil {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			return nil
		},
	}
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show murald scheduler status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printDaemonStatus(ctx, cmd)
		},
	}
}

func printDaemonStatus(ctx *commandContext, cmd *cobra.Command) error {
	stdout := cmd.OutOrStdout()
	return ctx.withClient(func(client *ipc.Client) error {
		status, err := client.Status()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderSectionHeader("Daemon"))
		fmt.Fprintf(stdout, "  Running:      %s\n", yesNo(status.Running))
		fmt.Fprintf(stdout, "  PID:          %d\n", status.PID)
		if status.LastStatus != "" {
			fmt.Fprintf(stdout, "  Last status:  %s\n", status.LastStatus)
		}
		if status.LastError != "" {
			fmt.Fprintf(stdout, "  Last error:   %s\n", status.LastError)
		}
		if status.LastRunAt != "" {
			fmt.Fprintf(stdout, "  Last run:     %s\n", status.LastRunAt)
		}
		if status.NextRunAt != "" {
			fmt.Fprintf(stdout, "  Next run:     %s\n", status.NextRunAt)
		}
		fmt.Fprintf(stdout, "  Lock file:    %s\n", status.LockPath)
		fmt.Fprintf(stdout, "  State file:   %s\n", status.StateFile)
		fmt.Fprintf(stdout, "  Journal:      %s\n", status.JournalPath)
		return nil
	})
}

func daemonExecutable() (string, error) {
	self, err := os.Executable()
	if err == nil {
		candidate := filepath.Join(filepath.Dir(self), "murald")
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	path, err := exec.LookPath("murald")
	if err != nil {
		return "", fmt.Errorf("locate murald binary: %w", err)
	}
	return path, nil
}

func waitForSocket(ctx *commandContext, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		client, err := ctx.dialClient()
		if err == nil {
			client.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("daemon did not come up within %s: %w", timeout, err)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
