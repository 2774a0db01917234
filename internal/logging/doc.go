// Package logging provides structured logging for segmentform.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used by the editor, the submission client and the segment sink.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Payload bodies, websocket traffic
//   - Info: Submissions, received segments, server lifecycle
//   - Warn: Non-fatal issues (dropped watchers, rejected payloads)
//   - Error: Submission failures, startup failures
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Segment submitted",
//	    zap.String("segment", "VIPs"),
//	    zap.Int("fields", 2),
//	)
//
// # Configuration
//
// Logging is silent unless a level is given or SEGMENTFORM_LOG_LEVEL is set:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// The interactive editor owns the terminal, so it routes log output to a file
// with SetOutputPaths before calling Initialize.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
