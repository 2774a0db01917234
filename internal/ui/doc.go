// Package ui renders run-once terminal output for the segmentform CLI.
//
// These components are not interactive (see internal/tui for the editor).
// They render a styled box and return:
//
//   - Header: command banner with ordered parameters
//   - Result: success, failure, or warning box with details and troubleshooting tips
//   - Segment preview: the segment name and its numbered schema fields
//   - Confirm: a warning box followed by a y/N prompt
//
// Example:
//
//	p := ui.NewPrinter(cmd.OutOrStdout())
//	p.PrintSegment(seg)
//	if err := client.Submit(ctx, seg); err != nil {
//	    p.PrintError("Submission failed", err, submit.TroubleshootingHints(err))
//	    return err
//	}
//	p.PrintSuccess("Segment submitted", ui.Detail{Key: "Endpoint", Value: client.Endpoint})
//
// Width comes from golang.org/x/term when writing to a terminal and falls
// back to MinTerminalWidth otherwise.
//
// Logging is controlled separately via SEGMENTFORM_LOG_LEVEL. When it is
// unset, zap is silent and only this package's output is shown.
package ui
