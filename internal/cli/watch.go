package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"revtrace/internal/load"
	"revtrace/internal/watch"
)

// NewWatchCommand creates the watch subcommand: follow a journal file
// and reprint the summary after each change. Every reload builds a
// fresh index; a failed reload keeps the previous one.
func NewWatchCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <journal-file>",
		Short: "Follow a journal and reload on change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			cfg := engineConfig()

			reload := func(ctx context.Context) {
				res, err := load.File(ctx, path, cfg)
				if err != nil {
					slog.Error("reload failed", "path", path, "error", err)
					return
				}
				if err := printSummary(cmd, opts, res); err != nil {
					slog.Error("render failed", "path", path, "error", err)
				}
			}

			// Initial load before entering the event loop.
			reload(cmd.Context())

			w, err := watch.New(path)
			if err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl-c to stop)\n", path)
			err = w.Run(cmd.Context(), reload)
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
	return cmd
}
