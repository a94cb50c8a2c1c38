package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mural/internal/journal"
	"mural/internal/rotation"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, rotation, and last-run status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()

			if err := printDaemonStatus(ctx, cmd); err != nil {
				fmt.Fprintln(stdout, renderSectionHeader("Daemon"))
				fmt.Fprintln(stdout, "  Running:      no")
			}
			fmt.Fprintln(stdout)

			state := rotation.LoadState(cfg.Paths.StateFile)
			fmt.Fprintln(stdout, renderSectionHeader("Rotation"))
			fmt.Fprintf(stdout, "  Cursor:       %d\n", state.Cursor)
			fmt.Fprintf(stdout, "  History:      %d applied\n", len(state.History))
			if state.LastApplied != 0 {
				fmt.Fprintf(stdout, "  Last applied: %d\n", state.LastApplied)
			}
			if len(state.FailedRecent) > 0 {
				fmt.Fprintf(stdout, "  Failing:      %s\n", formatIDs(state.FailedRecent, 5))
			}
			fmt.Fprintln(stdout)

			store, err := journal.Open(cfg)
			if err != nil {
				fmt.Fprintln(stdout, renderSectionHeader("Last run"))
				fmt.Fprintf(stdout, "  journal unavailable: %v\n", err)
				return nil
			}
			defer store.Close()

			last, err := store.LastRun(cmd.Context())
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			fmt.Fprintln(stdout, renderSectionHeader("Last run"))
			if last == nil {
				fmt.Fprintln(stdout, "  no runs recorded")
				return nil
			}
			fmt.Fprintf(stdout, "  Started:      %s\n", last.StartedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(stdout, "  Status:       %s\n", last.Status)
			if last.AppliedID != 0 {
				fmt.Fprintf(stdout, "  Applied:      %d\n", last.AppliedID)
			}
			fmt.Fprintf(stdout, "  Candidates:   %d fetched, %d filtered, %d attempted\n",
				last.Fetched, last.Filtered, last.Attempted)
			if last.Error != "" {
				fmt.Fprintf(stdout, "  Error:        %s\n", last.Error)
			}
			return nil
		},
	}
}

func formatIDs(ids []uint64, limit int) string {
	parts := make([]string, 0, len(ids))
	for i, id := range ids {
		if limit > 0 && i >= limit {
			parts = append(parts, fmt.Sprintf("+%d more", len(ids)-limit))
			break
		}
		parts = append(parts, strconv.FormatUint(id, 10))
	}
	return strings.Join(parts, ", ")
}
