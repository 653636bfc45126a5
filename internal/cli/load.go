package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"revtrace/internal/journal"
	"revtrace/internal/load"
)

// NewLoadCommand creates the load subcommand: ingest one journal and
// print a summary.
func NewLoadCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <journal-file>",
		Short: "Load a journal and print its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := load.File(cmd.Context(), args[0], engineConfig())
			if err != nil {
				return err
			}
			return printSummary(cmd, opts, res)
		},
	}
	return cmd
}

type summary struct {
	LoadID       string                   `json:"load_id"`
	Path         string                   `json:"path"`
	Encoding     string                   `json:"encoding"`
	FallbackUsed bool                     `json:"fallback_used"`
	WorkerLoaded bool                     `json:"worker_loaded"`
	Header       journal.Header           `json:"header"`
	Entries      int                      `json:"entries"`
	Stats        map[journal.Category]int `json:"stats"`
	Documents    []string                 `json:"documents"`
}

func printSummary(cmd *cobra.Command, opts *RootOptions, res *load.Result) error {
	s := summary{
		LoadID:       res.LoadID.String(),
		Path:         res.Path,
		Encoding:     res.Encoding,
		FallbackUsed: res.FallbackUsed,
		WorkerLoaded: res.WorkerLoaded,
		Header:       res.Header,
		Entries:      res.Index.Len(),
		Stats:        res.Index.Stats(),
		Documents:    res.Index.Documents(),
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded %s (%s", s.Path, s.Encoding)
	if s.FallbackUsed {
		fmt.Fprintf(out, ", fallback")
	}
	fmt.Fprintf(out, ")\n")
	if s.Header != (journal.Header{}) {
		fmt.Fprintf(out, "Build: %s  Branch: %s  Release: %s  User: %s\n",
			s.Header.Build, s.Header.Branch, s.Header.Release, s.Header.Username)
	}
	fmt.Fprintf(out, "Entries: %d", s.Entries)
	if s.WorkerLoaded {
		fmt.Fprintf(out, " (worker log merged)")
	}
	fmt.Fprintf(out, "\n")
	for _, c := range journal.Categories() {
		if n := s.Stats[c]; n > 0 {
			fmt.Fprintf(out, "  %-12s %d\n", c, n)
		}
	}
	if len(s.Documents) > 0 {
		fmt.Fprintf(out, "Documents:\n")
		for _, d := range s.Documents {
			fmt.Fprintf(out, "  %s\n", d)
		}
	}
	return nil
}
