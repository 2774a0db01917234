package sink

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/segmentform/internal/discovery"
	"github.com/muurk/segmentform/internal/logging"
)

const (
	// DefaultPort is the port the sink listens on
	DefaultPort = 8080

	// DefaultPath is where segments are accepted
	DefaultPath = "/segments"

	// DefaultWatchPath is where the websocket live feed is served
	DefaultWatchPath = "/ws"

	// shutdownTimeout bounds graceful shutdown
	shutdownTimeout = 10 * time.Second
)

// Config holds the sink configuration
type Config struct {
	Host        string
	Port        int
	Path        string        // Submission path (default /segments)
	WatchPath   string        // WebSocket path (default /ws)
	HistorySize int           // Records kept in memory
	Advertise   bool          // Register the sink over mDNS
	Instance    string        // mDNS instance name (default "segment-sink on <hostname>")
	OnRecord    func(Record)  // Called for every accepted record (optional)
	ReadTimeout time.Duration // HTTP read timeout (default 15s)
}

// Server receives segments over HTTP and republishes them to watchers
type Server struct {
	config   Config
	history  *History
	hub      *Hub
	upgrader websocket.Upgrader
	httpSrv  *http.Server
	listener net.Listener

	now   func() time.Time
	newID func() string
}

// New creates a new Server with defaults applied to config
func New(config Config) *Server {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if config.WatchPath == "" {
		config.WatchPath = DefaultWatchPath
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 15 * time.Second
	}

	s := &Server{
		config:   config,
		history:  NewHistory(config.HistorySize),
		hub:      NewHub(),
		upgrader: newUpgrader(),
		now:      defaultNow,
		newID:    defaultID,
	}
	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: config.ReadTimeout,
	}
	return s
}

// Handler returns the sink's HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+s.config.Path, s.handleSubmit)
	mux.HandleFunc("GET "+s.config.Path, s.handleList)
	mux.HandleFunc("GET "+s.config.Path+"/{id}", s.handleGet)
	mux.HandleFunc("GET "+s.config.WatchPath, s.handleWatch)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// History returns the record store
func (s *Server) History() *History {
	return s.history
}

// Addr returns the bound listen address once Listen has succeeded
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Listen binds the TCP listener without serving
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	return nil
}

// Start listens (if needed) and serves until ctx is done or SIGINT/SIGTERM
// arrives, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	logging.Info("Starting segment sink",
		zap.String("addr", s.Addr()),
		zap.String("path", s.config.Path),
		zap.String("watch_path", s.config.WatchPath),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.config.Advertise {
		ad, err := discovery.Advertise(ctx, s.instanceName(), s.boundPort(), s.config.Path, s.config.WatchPath)
		if err != nil {
			// The sink is still reachable by address
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			defer ad.Shutdown()
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpSrv.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown signal received, stopping sink...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("sink server failed: %w", err)
	}
}

// Shutdown gracefully shuts down the sink
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down sink...")

	// Hijacked websocket connections are not tracked by http.Server
	s.hub.Close()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		_ = s.httpSrv.Close()
	}

	logging.Sync()
	return nil
}

func (s *Server) instanceName() string {
	if s.config.Instance != "" {
		return s.config.Instance
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return "segment-sink on " + host
}

func (s *Server) boundPort() int {
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return s.config.Port
}
