// Package connectivity watches server reachability and decides when the
// coordinator should drain: on reconnect, on a periodic schedule, on an
// explicit user request and on server wake pushes.
package connectivity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	clientsync "github.com/driftlabs/driftsync/internal/client/sync"
)

//go:generate moq -out monitor_mock.go . Drainer Prober

// Drainer is the coordinator surface the monitor drives. The monitor only
// ever observes and triggers; connection-state ownership stays with the
// coordinator.
type Drainer interface {
	Drain(ctx context.Context, reachable bool) (*clientsync.DrainResult, error)
	Kicks() <-chan struct{}
}

// Prober answers whether the server is reachable right now.
type Prober interface {
	Health(ctx context.Context) error
}

// Config controls probe and drain cadence.
type Config struct {
	// ProbeInterval is how often reachability is checked.
	ProbeInterval time.Duration

	// SyncInterval is how often a drain runs regardless of transitions,
	// so backed-off entries eventually retry.
	SyncInterval time.Duration

	// ProbeTimeout bounds a single health probe.
	ProbeTimeout time.Duration

	// WakeURL, when set, is a websocket endpoint whose messages request
	// an immediate drain (another device synced).
	WakeURL string

	// WakeHeader carries the auth header for the wake subscription.
	WakeHeader http.Header
}

// DefaultConfig returns the production cadence.
func DefaultConfig() Config {
	return Config{
		ProbeInterval: 15 * time.Second,
		SyncInterval:  5 * time.Minute,
		ProbeTimeout:  5 * time.Second,
	}
}

// Monitor runs the probe loop and translates events into drain calls.
type Monitor struct {
	prober    Prober
	drainer   Drainer
	logger    *slog.Logger
	force     chan struct{}
	cfg       Config
	reachable atomic.Bool
}

// NewMonitor creates a monitor; call Run to start it.
func NewMonitor(prober Prober, drainer Drainer, cfg Config, logger *slog.Logger) *Monitor {
	return &Monitor{
		prober:  prober,
		drainer: drainer,
		cfg:     cfg,
		logger:  logger,
		force:   make(chan struct{}, 1),
	}
}

// Reachable reports the last observed reachability.
func (m *Monitor) Reachable() bool {
	return m.reachable.Load()
}

// ForceSync requests an immediate probe-and-drain. Non-blocking; requests
// arriving while one is already queued coalesce.
func (m *Monitor) ForceSync() {
	select {
	case m.force <- struct{}{}:
	default:
	}
}

// Run drives the monitor until ctx is cancelled. Drains are serialized
// through this loop; the coordinator additionally guards against overlap.
func (m *Monitor) Run(ctx context.Context) error {
	probeTicker := time.NewTicker(m.cfg.ProbeInterval)
	defer probeTicker.Stop()
	syncTicker := time.NewTicker(m.cfg.SyncInterval)
	defer syncTicker.Stop()

	wake := make(chan struct{}, 1)
	if m.cfg.WakeURL != "" {
		go m.listenWake(ctx, wake)
	}

	// Establish the initial state before the first tick.
	m.probeAndDrain(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-probeTicker.C:
			m.probeAndDrain(ctx)
		case <-syncTicker.C:
			m.drain(ctx)
		case <-m.force:
			m.refresh(ctx)
			m.drain(ctx)
		case <-m.drainer.Kicks():
			m.drain(ctx)
		case <-wake:
			m.logger.Debug("wake push received")
			m.drain(ctx)
		}
	}
}

// probeAndDrain refreshes reachability and drains on every transition:
// reconnects flush the queue, disconnects flip the state to offline.
func (m *Monitor) probeAndDrain(ctx context.Context) {
	if m.refresh(ctx) {
		m.drain(ctx)
	}
}

// refresh probes the server and reports whether reachability changed.
func (m *Monitor) refresh(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	err := m.prober.Health(probeCtx)
	cancel()

	now := err == nil
	was := m.reachable.Swap(now)
	if now != was {
		m.logger.Info("reachability changed", "reachable", now)
	}
	return now != was
}

func (m *Monitor) drain(ctx context.Context) {
	result, err := m.drainer.Drain(ctx, m.reachable.Load())
	switch {
	case err == nil:
		if result.Processed > 0 {
			m.logger.Info("drain triggered",
				"acked", result.Acked, "requeued", result.Requeued, "parked", result.Parked)
		}
	case errors.Is(err, clientsync.ErrDrainInProgress):
		// Another trigger got there first.
	case errors.Is(err, clientsync.ErrNotAuthenticated):
		m.logger.Debug("drain skipped, no session")
	default:
		m.logger.Error("drain failed", "error", err)
	}
}

// listenWake maintains a websocket subscription to the server's wake
// endpoint, reconnecting with backoff until ctx is cancelled. Message
// contents are ignored; arrival is the signal.
func (m *Monitor) listenWake(ctx context.Context, wake chan<- struct{}) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, m.cfg.WakeURL, m.cfg.WakeHeader)
		if err != nil {
			m.logger.Debug("wake dial failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < time.Minute {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		go func() {
			<-ctx.Done()
			_ = conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				_ = conn.Close()
				break
			}
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
}
