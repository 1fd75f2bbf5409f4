package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hopper/internal/config"
	"hopper/internal/journal"
	"hopper/internal/queue"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect and manage the processing journal",
	}

	journalCmd.AddCommand(newJournalListCommand(ctx))
	journalCmd.AddCommand(newJournalClearCommand(ctx))

	return journalCmd
}

func newJournalListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(cfg *config.Config, store *journal.Store) error {
				var statuses []queue.Status
				if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
					status, ok := queue.ParseStatus(trimmed)
					if !ok {
						return fmt.Errorf("unknown status %q", trimmed)
					}
					statuses = append(statuses, status)
				}

				entries, err := store.List(cmd.Context(), limit, statuses...)
				if err != nil {
					return fmt.Errorf("list journal: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Journal is empty")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(entry.ID, 10),
						entry.BaseName,
						string(entry.Status),
						strconv.Itoa(entry.Attempts),
						entry.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
						entry.ErrorMessage,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "FILE", "STATUS", "ATTEMPTS", "UPDATED", "ERROR"},
					rows, 0, 3,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show entries with this status")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show (0 for all)")
	return cmd
}

func newJournalClearCommand(ctx *commandContext) *cobra.Command {
	var completedOnly bool
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if completedOnly && failedOnly {
				return fmt.Errorf("--completed and --failed are mutually exclusive")
			}
			return ctx.withJournal(func(cfg *config.Config, store *journal.Store) error {
				var (
					removed int64
					err     error
					what    string
				)
				switch {
				case completedOnly:
					removed, err = store.ClearCompleted(cmd.Context())
					what = "completed entries"
				case failedOnly:
					removed, err = store.ClearFailed(cmd.Context())
					what = "failed entries"
				default:
					removed, err = store.Clear(cmd.Context())
					what = "entries"
				}
				if err != nil {
					return fmt.Errorf("clear journal: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s\n", removed, what)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Only remove completed entries")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only remove failed entries")
	return cmd
}
