package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"hopper/internal/generator"
	"hopper/internal/logging"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "generate [count]",
		Short: "Write test files into the input directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := 1
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid count %q", args[0])
				}
				count = parsed
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			gen := generator.New(cfg, logging.NewNop())
			paths, err := gen.CreateBatch(cmd.Context(), count, interval)

			out := cmd.OutOrStdout()
			for _, path := range paths {
				fmt.Fprintf(out, "created %s\n", filepath.Base(path))
			}
			if err != nil {
				return fmt.Errorf("generate test files: %w", err)
			}
			fmt.Fprintf(out, "Created %d test files in %s\n", len(paths), cfg.Paths.InputDir)
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Pause between files (0 writes them concurrently)")
	return cmd
}
