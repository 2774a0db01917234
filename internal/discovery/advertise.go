package discovery

import (
	"context"
	"fmt"
	"sync"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/segmentform/internal/logging"
	"github.com/muurk/segmentform/internal/version"
)

// Advertisement is a registered mDNS service. It is withdrawn when the
// context passed to Advertise is done or Shutdown is called.
type Advertisement struct {
	server *zeroconf.Server
	once   sync.Once
}

// Advertise registers a sink under ServiceType so scanners can find it.
// path and watchPath are published as TXT records; empty values fall back
// to DefaultPath and DefaultWatchPath.
func Advertise(ctx context.Context, instance string, port int, path, watchPath string) (*Advertisement, error) {
	if instance == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, advertisedTXT(path, watchPath), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising segment sink via mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port))

	ad := &Advertisement{server: server}
	go func() {
		<-ctx.Done()
		ad.Shutdown()
	}()

	return ad, nil
}

// Shutdown withdraws the advertisement. Safe to call more than once.
func (a *Advertisement) Shutdown() {
	a.once.Do(func() {
		a.server.Shutdown()
		logging.Debug("mDNS advertisement withdrawn")
	})
}

func advertisedTXT(path, watchPath string) []string {
	if path == "" {
		path = DefaultPath
	}
	if watchPath == "" {
		watchPath = DefaultWatchPath
	}
	return []string{
		TXTPath + "=" + path,
		TXTWatchPath + "=" + watchPath,
		"version=" + version.Version,
	}
}
