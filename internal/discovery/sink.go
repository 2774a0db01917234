package discovery

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Sink represents a segment receiver advertised on the local network
type Sink struct {
	// Instance is the mDNS instance name (e.g., "segment-sink on studio")
	Instance string

	// Hostname is the mDNS hostname (e.g., "studio.local.")
	Hostname string

	// IP is the advertised address, IPv4 preferred
	IP string

	// Port is the HTTP port the sink listens on
	Port int

	// Path is the submission path taken from the "path" TXT record
	Path string

	// Metadata contains the remaining TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the sink was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable description of the sink
func (s *Sink) String() string {
	return fmt.Sprintf("%s (%s) at %s", s.Instance, s.Hostname, net.JoinHostPort(s.IP, strconv.Itoa(s.Port)))
}

// EndpointURL returns the URL segments should be POSTed to
func (s *Sink) EndpointURL() string {
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(s.IP, strconv.Itoa(s.Port)),
		Path:   s.Path,
	}
	return u.String()
}

// WatchURL returns the websocket URL of the sink's live feed
func (s *Sink) WatchURL() string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(s.IP, strconv.Itoa(s.Port)),
		Path:   s.GetMetadata(TXTWatchPath),
	}
	if u.Path == "" {
		u.Path = DefaultWatchPath
	}
	return u.String()
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Sink) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
