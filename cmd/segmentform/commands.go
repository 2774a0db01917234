package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/segmentform/internal/config"
	"github.com/muurk/segmentform/internal/discovery"
	"github.com/muurk/segmentform/internal/logging"
	"github.com/muurk/segmentform/internal/segment"
	"github.com/muurk/segmentform/internal/sink"
	"github.com/muurk/segmentform/internal/submit"
	"github.com/muurk/segmentform/internal/tui"
	"github.com/muurk/segmentform/internal/ui"
)

// Command flags
var (
	segmentName  string
	fieldKeys    []string
	dryRun       bool
	outputFormat string
	scanTimeout  int
	watchURL     string
)

func init() {
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(watchCmd)
}

// runEditor launches the interactive TUI editor
func runEditor(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal(os.Stdout) {
		return fmt.Errorf("the interactive editor needs a terminal; use 'segmentform submit' instead")
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	// Logs must not write over the alternate screen
	logPath, err := settings.LogFilePath()
	if err != nil {
		return err
	}
	logging.SetOutputPaths(logPath)
	if err := logging.Initialize(settings.LogLevel); err != nil {
		return err
	}
	defer logging.Sync()

	catalog, err := config.CatalogFromSettings(settings)
	if err != nil {
		return err
	}

	return tui.Run(tui.Options{
		Catalog:  catalog,
		Endpoint: settings.Endpoint,
		Timeout:  settings.Timeout(),
	})
}

// fieldsCmd lists the schema catalog
var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the schema fields that can be added to a segment",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		catalog, err := config.CatalogFromSettings(settings)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), segment.FormatCatalog(catalog))
		return nil
	},
}

// submitCmd builds a segment from flags and submits it once
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Build a segment from flags and submit it",
	Long: `Build a segment without the interactive editor and submit it once.

Each --field adds one schema row in the order given. A field already
added is skipped, just as the editor never offers it twice. Unknown keys
are submitted with a null label.`,
	Example: `  # Submit a segment with two fields
  segmentform submit --name VIPs --field first_name --field city

  # Preview the payload without sending it
  segmentform submit --name VIPs --field age --dry-run --format json

  # Send to a specific endpoint
  segmentform submit --name VIPs --field state --endpoint http://192.168.1.20:8080/segments`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&segmentName, "name", "", "Segment name")
	submitCmd.Flags().StringArrayVar(&fieldKeys, "field", nil, "Schema field key to add (repeatable)")
	submitCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the segment without submitting it")
	submitCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
}

// buildSegment drives an editor the way the TUI does: one pending
// selection and commit per key.
func buildSegment(catalog *segment.Catalog, name string, keys []string) (segment.Segment, []string) {
	editor := segment.NewEditor(catalog)
	editor.SetName(name)

	var skipped []string
	for _, key := range keys {
		if used(editor, key) {
			skipped = append(skipped, key)
			continue
		}
		editor.SetPendingSelection(key)
		editor.CommitPendingRow()
	}
	return editor.Serialize(), skipped
}

func used(editor *segment.Editor, key string) bool {
	for _, row := range editor.Rows() {
		if row.Key == key {
			return true
		}
	}
	return false
}

func runSubmit(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := initLogging(settings); err != nil {
		return err
	}
	defer logging.Sync()

	catalog, err := config.CatalogFromSettings(settings)
	if err != nil {
		return err
	}

	seg, skipped := buildSegment(catalog, segmentName, fieldKeys)
	for _, key := range skipped {
		logging.Warn("Duplicate field skipped", zap.String("key", key))
	}

	out := cmd.OutOrStdout()
	printer := ui.NewPrinter(out)

	if dryRun {
		return printSegment(printer, seg)
	}

	printer.PrintHeader("Submitting segment", "segmentform submit",
		ui.Detail{Key: "Endpoint", Value: settings.Endpoint},
		ui.Detail{Key: "Timeout", Value: settings.Timeout().String()},
	)

	client := submit.NewClient(settings.Endpoint)
	client.SetTimeout(settings.Timeout())

	start := time.Now()
	if err := client.Submit(contextOrBackground(cmd), seg); err != nil {
		printer.PrintError(submit.ShortMessage(err), err, submit.TroubleshootingHints(err))
		return fmt.Errorf("submission failed: %w", err)
	}

	if outputFormat == "json" {
		return printSegment(printer, seg)
	}
	printer.PrintSuccess("Segment submitted",
		ui.Detail{Key: "Name", Value: seg.Name},
		ui.Detail{Key: "Fields", Value: fmt.Sprintf("%d", len(seg.Fields))},
		ui.Detail{Key: "Duration", Value: time.Since(start).Round(time.Millisecond).String()},
	)
	printer.PrintSegment(seg)
	return nil
}

// printSegment renders seg in the selected --format
func printSegment(printer *ui.Printer, seg segment.Segment) error {
	switch outputFormat {
	case "compact":
		printer.Print(seg.FormatCompact())
	case "json":
		data, err := json.MarshalIndent(seg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		printer.Println(string(data))
	case "detailed":
		fallthrough
	default:
		printer.Print(seg.FormatDetailed())
	}
	return nil
}

// discoverCmd browses the network for segment sinks
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover segment sinks on the local network",
	Long: `Browse for segment sinks advertised over mDNS/DNS-SD.

Sinks started with 'segment-sink serve --advertise' announce themselves
as ` + discovery.ServiceType + `.`,
	Example: `  # Browse for 5 seconds (default)
  segmentform discover

  # Longer browse for slow networks
  segmentform discover --timeout 15`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Browse timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := initLogging(settings); err != nil {
		return err
	}
	defer logging.Sync()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Browsing for segment sinks (timeout: %ds)...\n\n", scanTimeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second

	sinks, err := scanner.Scan(contextOrBackground(cmd))
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(sinks) == 0 {
		fmt.Fprintln(out, "No sinks found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Start a sink with: segment-sink serve --advertise")
		fmt.Fprintln(out, "  - Check that multicast traffic is allowed on this network")
		fmt.Fprintln(out, "  - Try increasing --timeout for slower networks")
		return nil
	}

	fmt.Fprintf(out, "Found %d sink(s):\n\n", len(sinks))
	for i, s := range sinks {
		fmt.Fprintf(out, "%d. %s\n", i+1, s.Instance)
		fmt.Fprintf(out, "   Host:     %s\n", s.Hostname)
		fmt.Fprintf(out, "   Endpoint: %s\n", s.EndpointURL())
		fmt.Fprintf(out, "   Watch:    %s\n", s.WatchURL())
		if v := s.GetMetadata("version"); v != "" {
			fmt.Fprintf(out, "   Version:  %s\n", v)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Use 'segmentform --endpoint <url>' to submit to a sink")
	return nil
}

// watchCmd streams records received by a sink
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print segments as a sink receives them",
	Long: `Connect to a sink's live feed and print each segment it receives
until interrupted.`,
	Example: `  # Watch a local sink
  segmentform watch

  # Watch a sink elsewhere on the network
  segmentform watch --url ws://192.168.1.20:8080/ws`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchURL, "url", "ws://localhost:8080/ws", "Sink websocket URL")
}

func runWatch(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := initLogging(settings); err != nil {
		return err
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt)
	defer stop()

	dialer := websocket.Dialer{HandshakeTimeout: settings.Timeout()}
	conn, _, err := dialer.DialContext(ctx, watchURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", watchURL, err)
	}
	defer conn.Close()

	logging.LogConnection(watchURL, "connected")
	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.Printf("Watching %s (Ctrl+C to stop)\n\n", watchURL)

	records := make(chan sink.Record)
	errs := make(chan error, 1)
	go readRecords(conn, records, errs, ctx.Done())

	for {
		select {
		case <-ctx.Done():
			// Close politely; the sink drops the watcher either way
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return nil
		case err := <-errs:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				printer.Println("Sink closed the connection")
				return nil
			}
			return fmt.Errorf("watch failed: %w", err)
		case rec := <-records:
			printer.Printf("%s  %s  %s from %s\n", rec.ReceivedAt.Format(time.RFC3339), rec.ID, rec.Segment.Summary(), rec.RemoteAddr)
			printer.PrintSegment(rec.Segment)
		}
	}
}

// readRecords decodes records from conn until it fails or done is closed
func readRecords(conn *websocket.Conn, records chan<- sink.Record, errs chan<- error, done <-chan struct{}) {
	for {
		var rec sink.Record
		if err := conn.ReadJSON(&rec); err != nil {
			select {
			case errs <- err:
			case <-done:
			}
			return
		}
		select {
		case records <- rec:
		case <-done:
			return
		}
	}
}

// contextOrBackground keeps commands usable when executed without a context
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
