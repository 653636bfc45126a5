// Package cli wires the ingestion engine into the revtrace command.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"revtrace/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json"
	ConfigFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the revtrace CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "revtrace",
		Short: "revtrace - journal ingestion and analysis",
		Long: `revtrace ingests application journal files, categorizes every entry,
correlates document context, merges the worker log, and serves
composable queries and exports over the result.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			initConfig(opts.ConfigFile)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default: $HOME/.revtrace.yaml)")

	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewArchiveCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// initConfig resolves the optional config file through viper so values
// can also arrive from the environment (REVTRACE_* variables).
func initConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".revtrace")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("revtrace")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// engineConfig merges defaults with the resolved config file and
// environment.
func engineConfig() config.Config {
	cfg := config.Default()
	if v := viper.GetInt("performance_threshold_ms"); v > 0 {
		cfg.PerformanceThresholdMS = v
	}
	if v := viper.GetStringSlice("encoding_fallbacks"); len(v) > 0 {
		cfg.EncodingFallbacks = v
	}
	if viper.IsSet("load_worker_log") {
		cfg.LoadWorkerLog = viper.GetBool("load_worker_log")
	}
	return cfg
}
