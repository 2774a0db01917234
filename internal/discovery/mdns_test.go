package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/grandcat/zeroconf"
)

func newEntry(instance string) *zeroconf.ServiceEntry {
	return zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    func() *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
		wantPath string
	}{
		{
			name: "IPv4 sink with path",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("segment-sink on studio")
				e.HostName = "studio.local."
				e.Port = 8080
				e.AddrIPv4 = []net.IP{net.ParseIP("192.168.4.16")}
				e.Text = []string{"path=/segments", "watch=/ws"}
				return e
			},
			wantIP:   "192.168.4.16",
			wantPort: 8080,
			wantPath: "/segments",
		},
		{
			name: "no port and no path use defaults",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("bare")
				e.AddrIPv4 = []net.IP{net.ParseIP("10.0.0.5")}
				return e
			},
			wantIP:   "10.0.0.5",
			wantPort: DefaultPort,
			wantPath: DefaultPath,
		},
		{
			name: "path without leading slash",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("relative")
				e.Port = 9000
				e.AddrIPv4 = []net.IP{net.ParseIP("10.0.0.6")}
				e.Text = []string{"path=hooks/segment"}
				return e
			},
			wantIP:   "10.0.0.6",
			wantPort: 9000,
			wantPath: "/hooks/segment",
		},
		{
			name: "IPv6 only",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("v6")
				e.Port = 8080
				e.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}
				return e
			},
			wantIP:   "fe80::1",
			wantPort: 8080,
			wantPath: DefaultPath,
		},
		{
			name: "prefers IPv4",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("dual")
				e.Port = 8080
				e.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.50")}
				e.AddrIPv6 = []net.IP{net.ParseIP("fe80::2")}
				return e
			},
			wantIP:   "192.168.1.50",
			wantPort: 8080,
			wantPath: DefaultPath,
		},
		{
			name: "no address",
			entry: func() *zeroconf.ServiceEntry {
				return newEntry("ghost")
			},
			wantNil: true,
		},
		{
			name: "no instance",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("")
				e.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.1")}
				return e
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := tt.entry()
			sink := parseServiceEntry(entry)

			if tt.wantNil {
				if sink != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", sink)
				}
				return
			}

			if sink == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil sink")
			}
			if sink.Instance != entry.Instance {
				t.Errorf("sink.Instance = %v, want %v", sink.Instance, entry.Instance)
			}
			if sink.IP != tt.wantIP {
				t.Errorf("sink.IP = %v, want %v", sink.IP, tt.wantIP)
			}
			if sink.Port != tt.wantPort {
				t.Errorf("sink.Port = %v, want %v", sink.Port, tt.wantPort)
			}
			if sink.Path != tt.wantPath {
				t.Errorf("sink.Path = %v, want %v", sink.Path, tt.wantPath)
			}
			if time.Since(sink.DiscoveredAt) > time.Second {
				t.Errorf("sink.DiscoveredAt is not recent: %v", sink.DiscoveredAt)
			}
		})
	}
}

func TestParseServiceEntry_Nil(t *testing.T) {
	if parseServiceEntry(nil) != nil {
		t.Error("parseServiceEntry(nil) should return nil")
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"path=/segments", "version=1.0", "flag", "=orphan", "expr=a=b"})

	want := map[string]string{
		"path":    "/segments",
		"version": "1.0",
		"flag":    "",
		"expr":    "a=b",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseTXT() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

func TestAdvertisedTXT(t *testing.T) {
	txt := advertisedTXT("", "")
	meta := parseTXT(txt)

	if meta[TXTPath] != DefaultPath {
		t.Errorf("path TXT = %q, want %q", meta[TXTPath], DefaultPath)
	}
	if meta[TXTWatchPath] != DefaultWatchPath {
		t.Errorf("watch TXT = %q, want %q", meta[TXTWatchPath], DefaultWatchPath)
	}
	if _, ok := meta["version"]; !ok {
		t.Error("version TXT record missing")
	}
}

func TestAdvertisedTXT_CustomWatchPath(t *testing.T) {
	entry := newEntry("segment-sink on lab")
	entry.AddrIPv4 = []net.IP{net.ParseIP("10.0.0.5")}
	entry.Port = 9090
	entry.Text = advertisedTXT("/segments", "/feed")

	sink := parseServiceEntry(entry)
	if sink == nil {
		t.Fatal("parseServiceEntry() = nil, want sink")
	}

	if got, want := sink.EndpointURL(), "http://10.0.0.5:9090/segments"; got != want {
		t.Errorf("EndpointURL() = %q, want %q", got, want)
	}
	if got, want := sink.WatchURL(), "ws://10.0.0.5:9090/feed"; got != want {
		t.Errorf("WatchURL() = %q, want %q", got, want)
	}
}

func TestFirstSink(t *testing.T) {
	usable := newEntry("second")
	usable.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.20")}
	usable.Port = 8080

	entries := make(chan *zeroconf.ServiceEntry, 2)
	entries <- newEntry("first") // no address, skipped
	entries <- usable

	sink, err := firstSink(context.Background(), entries)
	if err != nil {
		t.Fatalf("firstSink() error = %v", err)
	}
	if sink.Instance != "second" {
		t.Errorf("sink.Instance = %q, want %q", sink.Instance, "second")
	}
}

func TestFirstSink_NoneFound(t *testing.T) {
	t.Run("closed", func(t *testing.T) {
		entries := make(chan *zeroconf.ServiceEntry, 1)
		entries <- newEntry("unusable")
		close(entries)

		if _, err := firstSink(context.Background(), entries); !errors.Is(err, ErrNoSinkFound) {
			t.Errorf("firstSink() error = %v, want ErrNoSinkFound", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := firstSink(ctx, make(chan *zeroconf.ServiceEntry)); !errors.Is(err, context.Canceled) {
			t.Errorf("firstSink() error = %v, want context.Canceled", err)
		}
	})
}

// Live mDNS browsing and registration need multicast on the host network
// and are exercised manually with `segment-sink serve --advertise` and
// `segmentform discover`.
