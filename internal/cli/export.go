package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"revtrace/internal/export"
	"revtrace/internal/load"
	"revtrace/internal/query"
)

// NewExportCommand creates the export subcommand: serialize a filtered
// selection with its provenance metadata.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	flags := &queryFlags{}
	var (
		outPath string
		asText  bool
	)

	cmd := &cobra.Command{
		Use:   "export <journal-file>",
		Short: "Export filtered entries with metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := flags.spec()
			if err != nil {
				return err
			}

			res, err := load.File(cmd.Context(), args[0], engineConfig())
			if err != nil {
				return err
			}

			entries := query.New(res.Index).Collect(spec)
			artifact := export.New(entries, export.Metadata{
				ExportedAt: time.Now(),
				LoadID:     res.LoadID.String(),
				SourcePath: res.Path,
				Filters:    flags.describe(),
				Header:     res.Header,
			})

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if asText {
				return export.WriteText(w, artifact)
			}
			return export.WriteYAML(w, artifact)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&asText, "text", false, "write the human-readable text form")
	return cmd
}
