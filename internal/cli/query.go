package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"revtrace/internal/journal"
	"revtrace/internal/load"
	"revtrace/internal/query"
	"revtrace/internal/render"
)

// queryFlags are the filter options shared by query and export.
type queryFlags struct {
	Category string
	Search   string
	Last     string
	Since    string
	Document string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Category, "category", "all", "restrict to one category")
	cmd.Flags().StringVar(&f.Search, "search", "", "case-insensitive substring over entry bodies")
	cmd.Flags().StringVar(&f.Last, "last", "", `relative time window, e.g. "last 15 minutes"`)
	cmd.Flags().StringVar(&f.Since, "since", "", "absolute start time (RFC3339 or journal format)")
	cmd.Flags().StringVar(&f.Document, "document", "", "restrict to one document id")
}

// spec converts the flags to a FilterSpec.
func (f *queryFlags) spec() (query.FilterSpec, error) {
	cat, err := journal.ParseCategory(f.Category)
	if err != nil {
		return query.FilterSpec{}, err
	}
	win, err := query.ParseWindow(f.Last)
	if err != nil {
		return query.FilterSpec{}, err
	}
	if f.Since != "" {
		if !win.IsZero() {
			return query.FilterSpec{}, fmt.Errorf("--since and --last are mutually exclusive")
		}
		start, err := parseInstant(f.Since)
		if err != nil {
			return query.FilterSpec{}, err
		}
		win.Start = start
	}
	spec := query.FilterSpec{Category: cat, Search: f.Search, Window: win}
	if f.Document != "" {
		doc := f.Document
		spec.Document = &doc
	}
	return spec, nil
}

// parseInstant accepts RFC3339 or the journal's own timestamp format.
func parseInstant(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(journal.TimestampLayout, s); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// describe summarizes the active filters for export metadata.
func (f *queryFlags) describe() []string {
	var out []string
	if f.Category != "" && f.Category != "all" {
		out = append(out, "Category: "+f.Category)
	}
	if f.Search != "" {
		out = append(out, fmt.Sprintf("Search: %q", f.Search))
	}
	if f.Last != "" {
		out = append(out, "Time Range: "+f.Last)
	}
	if f.Since != "" {
		out = append(out, "Since: "+f.Since)
	}
	if f.Document != "" {
		out = append(out, "Document: "+f.Document)
	}
	return out
}

// NewQueryCommand creates the query subcommand: load a journal and
// print the entries matching the filter flags.
func NewQueryCommand(opts *RootOptions) *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "query <journal-file>",
		Short: "Load a journal and print filtered entries",
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

			var r render.Renderer
			if opts.Format == "json" {
				r = render.NewJSON(cmd.OutOrStdout())
			} else {
				r = render.NewText(cmd.OutOrStdout())
			}

			eng := query.New(res.Index)
			n := 0
			for entry := range eng.Select(spec) {
				if err := r.Render(entry); err != nil {
					return err
				}
				n++
			}
			if opts.Format == "text" {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d entries\n", n, res.Index.Len())
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
