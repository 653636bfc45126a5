package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"revtrace/internal/discover"
	"revtrace/internal/worker"
)

// defaultScanRoot returns the conventional journal location under the
// user's local application data.
func defaultScanRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "AppData", "Local", "Autodesk", "Revit")
}

// NewScanCommand creates the scan subcommand: list installed versions
// and their journal files, newest first.
func NewScanCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Discover journal files per installed version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := defaultScanRoot()
			if len(args) == 1 {
				root = args[0]
			}

			found, err := discover.Scan(root)
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(found)
			}

			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintf(out, "no journals found under %s\n", root)
				return nil
			}
			for _, v := range found {
				fmt.Fprintf(out, "%s\n", v.Version)
				for _, j := range v.Journals {
					fmt.Fprintf(out, "  %s", j)
					if _, ok := worker.Locate(j); ok {
						fmt.Fprintf(out, "  [worker log]")
					}
					fmt.Fprintf(out, "\n")
				}
			}
			return nil
		},
	}
	return cmd
}
