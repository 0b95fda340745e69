package connectivity

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientsync "github.com/driftlabs/driftsync/internal/client/sync"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type drainCall struct {
	reachable bool
}

func newTestMonitor(healthy *atomic.Bool, kicks chan struct{}) (*Monitor, chan drainCall) {
	drains := make(chan drainCall, 16)
	drainer := &DrainerMock{
		DrainFunc: func(ctx context.Context, reachable bool) (*clientsync.DrainResult, error) {
			drains <- drainCall{reachable: reachable}
			return &clientsync.DrainResult{}, nil
		},
		KicksFunc: func() <-chan struct{} { return kicks },
	}
	prober := &ProberMock{
		HealthFunc: func(ctx context.Context) error {
			if healthy.Load() {
				return nil
			}
			return errors.New("connection refused")
		},
	}
	cfg := Config{
		ProbeInterval: 10 * time.Millisecond,
		SyncInterval:  time.Hour,
		ProbeTimeout:  time.Second,
	}
	return NewMonitor(prober, drainer, cfg, testLogger()), drains
}

func waitDrain(t *testing.T, drains chan drainCall) drainCall {
	t.Helper()
	select {
	case call := <-drains:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a drain")
		return drainCall{}
	}
}

func TestMonitor_ReconnectTriggersDrain(t *testing.T) {
	var healthy atomic.Bool
	monitor, drains := newTestMonitor(&healthy, make(chan struct{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = monitor.Run(ctx) }()

	// Unreachable at startup: no transition, no drain.
	select {
	case <-drains:
		t.Fatal("unexpected drain while unreachable")
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, monitor.Reachable())

	// Server comes back: the next probe drains with reachable=true.
	healthy.Store(true)
	call := waitDrain(t, drains)
	assert.True(t, call.reachable)
	assert.True(t, monitor.Reachable())

	// Server goes away: the transition drains with reachable=false so the
	// coordinator can flip the state to offline.
	healthy.Store(false)
	call = waitDrain(t, drains)
	assert.False(t, call.reachable)
	assert.False(t, monitor.Reachable())
}

func TestMonitor_ForceSyncDrainsWithoutTransition(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	monitor, drains := newTestMonitor(&healthy, make(chan struct{}))
	monitor.cfg.ProbeInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = monitor.Run(ctx) }()

	// Startup transition offline->online.
	call := waitDrain(t, drains)
	require.True(t, call.reachable)

	// Reachability is stable, so only an explicit request drains.
	monitor.ForceSync()
	call = waitDrain(t, drains)
	assert.True(t, call.reachable)
}

func TestMonitor_CoordinatorKickDrains(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	kicks := make(chan struct{}, 1)
	monitor, drains := newTestMonitor(&healthy, kicks)
	monitor.cfg.ProbeInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = monitor.Run(ctx) }()

	call := waitDrain(t, drains)
	require.True(t, call.reachable)

	kicks <- struct{}{}
	call = waitDrain(t, drains)
	assert.True(t, call.reachable)
}

func TestMonitor_PeriodicDrainRetriesBackedOffEntries(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	monitor, drains := newTestMonitor(&healthy, make(chan struct{}))
	monitor.cfg.ProbeInterval = time.Hour
	monitor.cfg.SyncInterval = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = monitor.Run(ctx) }()

	// Startup drain, then at least one periodic drain.
	waitDrain(t, drains)
	call := waitDrain(t, drains)
	assert.True(t, call.reachable)
}

func TestMonitor_DrainInProgressIsNotAnError(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	drained := make(chan struct{}, 1)
	drainer := &DrainerMock{
		DrainFunc: func(ctx context.Context, reachable bool) (*clientsync.DrainResult, error) {
			select {
			case drained <- struct{}{}:
			default:
			}
			return nil, clientsync.ErrDrainInProgress
		},
		KicksFunc: func() <-chan struct{} { return make(chan struct{}) },
	}
	prober := &ProberMock{HealthFunc: func(ctx context.Context) error { return nil }}

	monitor := NewMonitor(prober, drainer, Config{
		ProbeInterval: 10 * time.Millisecond,
		SyncInterval:  time.Hour,
		ProbeTimeout:  time.Second,
	}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = monitor.Run(ctx) }()

	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a drain attempt")
	}
}
