package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"hopper/internal/config"
	"hopper/internal/journal"
	"hopper/internal/queue"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon state and journal summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(cfg *config.Config, store *journal.Store) error {
				out := cmd.OutOrStdout()
				colorize := isatty.IsTerminal(os.Stdout.Fd())

				state := "not running"
				color := ansiYellow
				if daemonRunning(cfg) {
					state = "running"
					color = ansiGreen
				}
				if colorize {
					state = color + state + ansiReset
				}

				fmt.Fprintf(out, "Daemon:            %s\n", state)
				fmt.Fprintf(out, "Input directory:   %s\n", cfg.Paths.InputDir)
				fmt.Fprintf(out, "Output directory:  %s\n", cfg.Paths.OutputDir)
				fmt.Fprintf(out, "Journal database:  %s\n", cfg.JournalPath())
				metricsState := "disabled"
				if cfg.Metrics.Enabled {
					metricsState = "listening on " + cfg.Metrics.Bind
				}
				fmt.Fprintf(out, "Metrics endpoint:  %s\n", metricsState)

				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return fmt.Errorf("journal stats: %w", err)
				}

				rows := make([][]string, 0, len(queue.Statuses())+1)
				total := 0
				for _, status := range queue.Statuses() {
					rows = append(rows, []string{string(status), strconv.Itoa(stats[status])})
					total += stats[status]
				}
				rows = append(rows, []string{"total", strconv.Itoa(total)})

				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(
					[]string{"STATUS", "FILES"},
					rows, 1,
				))
				return nil
			})
		},
	}
}

// daemonRunning probes the lock file. Failing to take the lock means a live
// daemon holds it.
func daemonRunning(cfg *config.Config) bool {
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return false
	}
	if ok {
		_ = lock.Unlock()
		return false
	}
	return true
}
