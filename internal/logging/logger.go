package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger      *zap.Logger
	outputPaths = []string{"stdout"}
)

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "SEGMENTFORM_LOG_LEVEL"

// SetOutputPaths changes where subsequent Initialize calls write log entries.
// Paths follow zap conventions ("stdout", "stderr" or a file path).
func SetOutputPaths(paths ...string) {
	if len(paths) == 0 {
		paths = []string{"stdout"}
	}
	outputPaths = paths
}

// Initialize creates a new logger with the specified level.
// If level is empty, it checks SEGMENTFORM_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	if err := ensureOutputDirs(outputPaths); err != nil {
		return err
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// ensureOutputDirs creates the parent directory of every file output path
func ensureOutputDirs(paths []string) error {
	for _, p := range paths {
		if p == "stdout" || p == "stderr" || strings.Contains(p, "://") {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	return nil
}

// InitializeFromEnv initializes the logger from the SEGMENTFORM_LOG_LEVEL
// environment variable, staying silent when it is unset.
func InitializeFromEnv() error {
	return Initialize("")
}

// ParseLevel maps a level name to a zap level.
// Unknown names map to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLogger replaces the global logger. Tests use this with zaptest/observer.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Silent until initialized so CLI output stays clean
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogConnection logs a connection event
func LogConnection(remoteAddr string, event string) {
	Info("Connection event",
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// LogSubmission logs the outcome of a single submission attempt
func LogSubmission(endpoint, requestID, segmentName string, fields int, duration time.Duration, err error) {
	base := []zap.Field{
		zap.String("endpoint", endpoint),
		zap.String("request_id", requestID),
		zap.String("segment", segmentName),
		zap.Int("fields", fields),
		zap.Duration("duration", duration),
	}

	if err != nil {
		Error("Segment submission failed", append(base, zap.Error(err))...)
		return
	}
	Info("Segment submitted", base...)
}

// LogSegmentReceived logs a segment accepted by the sink
func LogSegmentReceived(remoteAddr, id, segmentName string, keys []string) {
	Info("Segment received",
		zap.String("remote_addr", remoteAddr),
		zap.String("id", id),
		zap.String("segment", segmentName),
		zap.Strings("fields", keys),
	)
}

// LogHTTPRequest logs an HTTP request
func LogHTTPRequest(remoteAddr string, method string, path string, headers map[string]string) {
	Info("HTTP request received",
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
		zap.Any("headers", headers),
	)
}

// LogHTTPResponse logs an HTTP response
func LogHTTPResponse(remoteAddr string, statusCode int, size int) {
	Info("HTTP response sent",
		zap.String("remote_addr", remoteAddr),
		zap.Int("status_code", statusCode),
		zap.Int("size", size),
	)
}

// LogPayload logs a request or response body at debug level
func LogPayload(label string, data []byte) {
	Debug(label,
		zap.Int("length", len(data)),
		zap.String("body", truncate(data, 1024)),
	)
}

func truncate(data []byte, max int) string {
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
