package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/segmentform/internal/logging"
)

const (
	// ServiceType is the mDNS service type segment sinks advertise
	ServiceType = "_segmentsink._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for sink discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is assumed when an entry carries no port
	DefaultPort = 8080

	// DefaultPath is assumed when an entry has no path TXT record
	DefaultPath = "/segments"

	// DefaultWatchPath is assumed when an entry has no watch TXT record
	DefaultWatchPath = "/ws"

	// TXTPath is the TXT key holding the submission path
	TXTPath = "path"

	// TXTWatchPath is the TXT key holding the websocket path
	TXTWatchPath = "watch"
)

// Scanner handles mDNS sink discovery
type Scanner struct {
	// Timeout is the maximum time to wait for sink discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan browses for sinks until the timeout elapses or ctx is done.
// Sinks are returned sorted by instance name.
func (s *Scanner) Scan(ctx context.Context) ([]*Sink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu    sync.Mutex
		sinks = make(map[string]*Sink)
		wg    sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				sink := parseServiceEntry(entry)
				if sink == nil {
					continue
				}
				logging.Debug("Discovered segment sink", zap.String("instance", sink.Instance), zap.String("endpoint", sink.EndpointURL()))
				mu.Lock()
				sinks[sink.Instance] = sink
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()

	found := make([]*Sink, 0, len(sinks))
	for _, sink := range sinks {
		found = append(found, sink)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Instance < found[j].Instance })

	return found, nil
}

// ErrNoSinkFound is returned by First when browsing ends without a usable sink.
var ErrNoSinkFound = errors.New("no segment sink found")

// First browses until the first usable sink appears or the timeout elapses.
func (s *Scanner) First(ctx context.Context) (*Sink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	sink, err := firstSink(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("%w within %s", ErrNoSinkFound, s.Timeout)
	}
	logging.Debug("Using first discovered sink", zap.String("instance", sink.Instance), zap.String("endpoint", sink.EndpointURL()))
	return sink, nil
}

// firstSink returns the first entry that parses into a Sink
func firstSink(ctx context.Context, entries <-chan *zeroconf.ServiceEntry) (*Sink, error) {
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return nil, ErrNoSinkFound
			}
			if sink := parseServiceEntry(entry); sink != nil {
				return sink, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// parseServiceEntry converts a zeroconf service entry to a Sink.
// Returns nil if the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Sink {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	// Prefer IPv4
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := parseTXT(entry.Text)

	path := metadata[TXTPath]
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return &Sink{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Path:         path,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// parseTXT splits "key=value" TXT records into a map
func parseTXT(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, txt := range records {
		key, value, _ := strings.Cut(txt, "=")
		if key == "" {
			continue
		}
		metadata[key] = value
	}
	return metadata
}
