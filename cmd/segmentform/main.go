// Segmentform builds named segments from a catalog of schema fields and
// submits them to a webhook endpoint.
//
// Usage:
//
//	segmentform [command] [flags]
//
// Running without arguments launches the interactive editor.
// See 'segmentform --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/segmentform/internal/config"
	"github.com/muurk/segmentform/internal/discovery"
	"github.com/muurk/segmentform/internal/logging"
	"github.com/muurk/segmentform/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Persistent flags
var (
	configPath string
	endpoint   string
	timeout    int
	logLevel   string
	useFirst   bool
)

// findSink locates the sink used by --discover
var findSink = func(ctx context.Context) (*discovery.Sink, error) {
	return discovery.NewScanner().First(ctx)
}

var rootCmd = &cobra.Command{
	Use:   "segmentform",
	Short: "Segment builder and submitter",
	Long: `Build a named segment from a catalog of schema fields and submit it
to a webhook endpoint.

If no command is specified, the interactive segment editor launches.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runEditor,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/segmentform/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Endpoint segments are POSTed to (overrides config)")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", 0, "Submission timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&useFirst, "discover", false, "Submit to the first segment sink found over mDNS (overrides --endpoint)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "segmentform %s (commit: %s)\n", version.Version, version.Commit)
	},
}

// loadSettings reads the config file and applies flag overrides
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		settings.Endpoint = endpoint
	}
	if flags.Changed("timeout") {
		settings.TimeoutSeconds = timeout
	}
	if flags.Changed("log-level") {
		settings.LogLevel = logLevel
	}

	if useFirst {
		sink, err := findSink(contextOrBackground(cmd))
		if err != nil {
			return nil, fmt.Errorf("sink discovery failed: %w", err)
		}
		settings.Endpoint = sink.EndpointURL()
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// initLogging starts the logger for CLI commands, which log to stderr
func initLogging(settings *config.Settings) error {
	logging.SetOutputPaths("stderr")
	return logging.Initialize(settings.LogLevel)
}
