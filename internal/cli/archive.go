package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"revtrace/internal/archive"
	"revtrace/internal/load"
	"revtrace/internal/render"
)

// NewArchiveCommand creates the archive subcommand group: persist loads
// into the session archive and read them back.
func NewArchiveCommand(opts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage the session archive",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "revtrace.db", "archive database path")

	cmd.AddCommand(newArchiveSaveCommand(opts, &dbPath))
	cmd.AddCommand(newArchiveListCommand(opts, &dbPath))
	cmd.AddCommand(newArchiveShowCommand(opts, &dbPath))
	return cmd
}

func newArchiveSaveCommand(opts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "save <journal-file>",
		Short: "Load a journal and archive the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := load.File(cmd.Context(), args[0], engineConfig())
			if err != nil {
				return err
			}

			a, err := archive.Open(*dbPath)
			if err != nil {
				return err
			}
			defer a.Close()

			rec := archive.Record{
				LoadID:   res.LoadID.String(),
				Path:     res.Path,
				LoadedAt: time.Now(),
				Encoding: res.Encoding,
				Header:   res.Header,
			}
			if err := a.Save(cmd.Context(), rec, res.Index.Entries()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %s as %s (%d entries)\n",
				res.Path, rec.LoadID, res.Index.Len())
			return nil
		},
	}
}

func newArchiveListCommand(opts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived loads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := archive.Open(*dbPath)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.List(cmd.Context())
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %d entries\n",
					r.LoadID, r.LoadedAt.Format(time.RFC3339), r.Path, r.Entries)
			}
			return nil
		},
	}
}

func newArchiveShowCommand(opts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <load-id>",
		Short: "Print the entries of one archived load",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := archive.Open(*dbPath)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Entries(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var r render.Renderer
			if opts.Format == "json" {
				r = render.NewJSON(cmd.OutOrStdout())
			} else {
				r = render.NewText(cmd.OutOrStdout())
			}
			for _, e := range entries {
				if err := r.Render(e); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
