// Package server exposes running engines to operators: a JSON status endpoint
// and a WebSocket feed pushing the same snapshot periodically.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/zeusync/deltasync/internal/core/observability/log"
	"github.com/zeusync/deltasync/internal/engine"
)

const shutdownTimeout = 5 * time.Second

// StatusSource is anything reporting an engine status, typically an
// *engine.Context.
type StatusSource interface {
	Status() engine.Status
}

// Snapshot is the document served by /status and pushed on /ws.
type Snapshot struct {
	Time    time.Time       `json:"time"`
	Engines []engine.Status `json:"engines"`
}

type Config struct {
	Address      string
	PushInterval time.Duration
	Token        string
}

// Monitor serves read-only views of one or more engines.
type Monitor struct {
	cfg     Config
	sources []StatusSource
	logger  log.Log
	auth    TokenAuth
	feed    *feed
	now     func() time.Time

	mu       sync.Mutex
	listener net.Listener
	running  bool
}

func NewMonitor(cfg Config, logger log.Log, sources ...StatusSource) *Monitor {
	if cfg.PushInterval <= 0 {
		cfg.PushInterval = time.Second
	}
	if logger == nil {
		logger = log.Provide()
	}
	logger = logger.With(log.String("component", "monitor"))
	return &Monitor{
		cfg:     cfg,
		sources: sources,
		logger:  logger,
		auth:    TokenAuth{Token: cfg.Token},
		feed:    newFeed(logger),
		now:     time.Now,
	}
}

// Snapshot collects the status of every source.
func (m *Monitor) Snapshot() Snapshot {
	snap := Snapshot{Time: m.now(), Engines: make([]engine.Status, 0, len(m.sources))}
	for _, src := range m.sources {
		snap.Engines = append(snap.Engines, src.Status())
	}
	return snap
}

// Handler routes the monitor endpoints.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", m.handleHealth)
	mux.Handle("GET /status", m.auth.Wrap(http.HandlerFunc(m.handleStatus)))
	mux.Handle("GET /ws", m.auth.Wrap(http.HandlerFunc(m.handleWebSocket)))
	return mux
}

// Listen binds the configured address so bind failures surface before Run.
func (m *Monitor) Listen() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener != nil {
		return nil
	}
	l, err := net.Listen("tcp", m.cfg.Address)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrListenerFailed, m.cfg.Address, err)
	}
	m.listener = l
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (m *Monitor) Addr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return nil
	}
	return m.listener.Addr()
}

// Run serves until ctx is cancelled, binding first if Listen was not called.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.Listen(); err != nil {
		return err
	}
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrMonitorAlreadyRunning
	}
	m.running = true
	l := m.listener
	m.mu.Unlock()

	srv := &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(l) }()
	m.logger.Info("Monitor listening", log.String("addr", l.Addr().String()))

	ticker := time.NewTicker(m.cfg.PushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			m.feed.closeAll()
			err := srv.Shutdown(shutdownCtx)
			m.mu.Lock()
			m.listener, m.running = nil, false
			m.mu.Unlock()
			return err
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ticker.C:
			if m.feed.len() > 0 {
				m.feed.broadcast(m.Snapshot())
			}
		}
	}
}
