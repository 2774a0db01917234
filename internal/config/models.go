package config

import (
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/muurk/segmentform/internal/segment"
)

// CurrentVersion is the only settings file version understood by this build
const CurrentVersion = 1

const (
	defaultEndpoint       = "http://localhost:8080/segments"
	defaultTimeoutSeconds = 10
	defaultLogFile        = "segmentform.log"
)

// Settings represents the entire user configuration file.
type Settings struct {
	Version        int            `yaml:"version"`
	Endpoint       string         `yaml:"endpoint"`            // Webhook the segment is POSTed to
	TimeoutSeconds int            `yaml:"timeout_seconds"`     // Per-submission HTTP timeout
	LogLevel       string         `yaml:"log_level,omitempty"` // debug, info, warn, error (empty = silent)
	LogFile        string         `yaml:"log_file,omitempty"`  // Where the TUI writes logs
	Catalog        []CatalogField `yaml:"catalog,omitempty"`   // Overrides the built-in schema catalog
}

// CatalogField is one selectable schema field as stored on disk.
type CatalogField struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// NewSettings creates Settings with default values.
// The catalog is left empty so the built-in catalog applies.
func NewSettings() *Settings {
	return &Settings{
		Version:        CurrentVersion,
		Endpoint:       defaultEndpoint,
		TimeoutSeconds: defaultTimeoutSeconds,
	}
}

// Timeout returns the submission timeout as a duration.
func (s *Settings) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Validate checks the settings for values the tools cannot run with.
func (s *Settings) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", s.Version, CurrentVersion)
	}

	if s.Endpoint != "" {
		u, err := url.Parse(s.Endpoint)
		if err != nil {
			return fmt.Errorf("invalid endpoint %q: %w", s.Endpoint, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid endpoint %q: scheme must be http or https", s.Endpoint)
		}
		if u.Host == "" {
			return fmt.Errorf("invalid endpoint %q: missing host", s.Endpoint)
		}
	}

	if s.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", s.TimeoutSeconds)
	}

	if s.LogLevel != "" {
		if _, err := zapcore.ParseLevel(s.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level %q: %w", s.LogLevel, err)
		}
	}

	if _, err := CatalogFromSettings(s); err != nil {
		return err
	}

	return nil
}

// CatalogFromSettings builds the schema catalog described by s.
// An empty catalog section yields segment.DefaultCatalog().
func CatalogFromSettings(s *Settings) (*segment.Catalog, error) {
	if s == nil || len(s.Catalog) == 0 {
		return segment.DefaultCatalog(), nil
	}

	entries := make([]segment.Entry, 0, len(s.Catalog))
	for _, f := range s.Catalog {
		label := f.Label
		if label == "" {
			label = f.Key
		}
		entries = append(entries, segment.Entry{Key: f.Key, Label: label})
	}

	catalog, err := segment.NewCatalog(entries...)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return catalog, nil
}

// CatalogFields converts a catalog into its on-disk form.
func CatalogFields(c *segment.Catalog) []CatalogField {
	entries := c.Entries()
	fields := make([]CatalogField, 0, len(entries))
	for _, e := range entries {
		fields = append(fields, CatalogField{Key: e.Key, Label: e.Label})
	}
	return fields
}
