// Segment-sink is a local receiving endpoint for segmentform.
//
// It accepts submitted segments over HTTP, keeps the most recent ones in
// memory, and republishes each one to websocket watchers. It can
// announce itself over mDNS so 'segmentform discover' finds it.
//
// Usage:
//
//	segment-sink serve [flags]
//
// See 'segment-sink serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/segmentform/internal/logging"
	"github.com/muurk/segmentform/internal/sink"
	"github.com/muurk/segmentform/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "segment-sink",
	Short: "Segment receiving endpoint",
	Long: `A standalone HTTP endpoint that receives segments submitted by
segmentform and streams them to watchers over WebSocket.

Note: submitted segments are kept in memory only and are lost on exit.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host        string
	port        int
	path        string
	watchPath   string
	historySize int
	advertise   bool
	instance    string
	logLevel    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the segment sink",
	Long: `Start the sink and accept segments until interrupted.

Routes:
  POST <path>        accept a segment (201 with the record id)
  GET  <path>        list recent records
  GET  <path>/{id}   fetch one record
  GET  <watch-path>  websocket feed of new records
  GET  /healthz      record and watcher counts`,
	Example: `  # Start on the default port
  segment-sink serve

  # Announce the sink over mDNS with debug logging
  segment-sink serve --advertise --log-level debug

  # Keep more history on a custom port
  segment-sink serve --port 9090 --history 500`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", sink.DefaultPort, "Listen port")
	serveCmd.Flags().StringVar(&path, "path", sink.DefaultPath, "Submission path")
	serveCmd.Flags().StringVar(&watchPath, "watch-path", sink.DefaultWatchPath, "WebSocket feed path")
	serveCmd.Flags().IntVar(&historySize, "history", sink.DefaultHistorySize, "Number of records kept in memory")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Announce the sink over mDNS")
	serveCmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (default: \"segment-sink on <hostname>\")")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	if !strings.HasPrefix(path, "/") || !strings.HasPrefix(watchPath, "/") {
		return fmt.Errorf("--path and --watch-path must start with /")
	}
	if path == watchPath {
		return fmt.Errorf("--path and --watch-path must differ")
	}
	if historySize <= 0 {
		return fmt.Errorf("history must be positive, got %d", historySize)
	}

	logging.SetOutputPaths("stdout")
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	srv := sink.New(sink.Config{
		Host:        host,
		Port:        port,
		Path:        path,
		WatchPath:   watchPath,
		HistorySize: historySize,
		Advertise:   advertise,
		Instance:    instance,
	})

	if err := srv.Listen(); err != nil {
		return err
	}
	logging.Info("Segment sink ready",
		zap.String("submit", "http://"+srv.Addr()+path),
		zap.String("watch", "ws://"+srv.Addr()+watchPath),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Accepting segments at http://%s%s (Ctrl+C to stop)\n", srv.Addr(), path)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return srv.Start(ctx)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("segment-sink %s (commit: %s)\n", version.Version, version.Commit)
	},
}
