package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"xsmodels/core"
)

// Manager coordinates a graceful stop of the serve command: the first
// SIGINT or SIGTERM cancels Context, Shutdown drains tracked evaluations
// and runs the registry. A second signal exits immediately.
type Manager struct {
	logger  *zap.Logger
	timeout time.Duration
	exit    func(code int)

	ctx    context.Context
	cancel context.CancelFunc

	tracker  *Tracker
	registry *Registry
	signals  *signalCounter
	sigCh    chan os.Signal

	mu       sync.Mutex
	started  bool
	done     bool
	received os.Signal
}

type Option func(*Manager)

// WithTimeout bounds the whole shutdown sequence. The default is 30s.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithExit replaces os.Exit for the forced path.
func WithExit(exit func(code int)) Option {
	return func(m *Manager) { m.exit = exit }
}

func NewManager(logger *zap.Logger, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		logger:   logger,
		timeout:  30 * time.Second,
		exit:     os.Exit,
		ctx:      ctx,
		cancel:   cancel,
		tracker:  NewTracker(),
		registry: NewRegistry(),
		sigCh:    make(chan os.Signal, 2),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.signals = &signalCounter{force: func(sig os.Signal) {
		m.logger.Warn("second signal, exiting without cleanup", zap.String("signal", sig.String()))
		m.exit(ExitCodeFor(sig))
	}}
	return m
}

// Context is cancelled when shutdown begins.
func (m *Manager) Context() context.Context { return m.ctx }

func (m *Manager) Register(name string, priority int, fn core.ShutdownFunc) {
	m.registry.Register(name, priority, fn)
	m.logger.Debug("registered shutdown handler", zap.String("name", name), zap.Int("priority", priority))
}

// Start listens for SIGINT and SIGTERM. Calling it again does nothing.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	signal.Notify(m.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range m.sigCh {
			m.handleSignal(sig)
		}
	}()
}

func (m *Manager) handleSignal(sig os.Signal) {
	if !m.signals.observe(sig) {
		return
	}
	m.mu.Lock()
	m.received = sig
	m.mu.Unlock()
	m.logger.Info("stop requested", zap.String("signal", sig.String()))
	m.cancel()
}

// Signal returns the signal that started shutdown, or nil.
func (m *Manager) Signal() os.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.received
}

// Track runs fn as an in-flight evaluation. It returns ErrClosed without
// calling fn once shutdown has begun.
func (m *Manager) Track(fn func() error) error {
	if !m.tracker.Acquire() {
		return ErrClosed
	}
	defer m.tracker.Release()
	return fn()
}

// Draining reports whether new work is being refused.
func (m *Manager) Draining() bool { return m.tracker.Closed() }

func (m *Manager) Active() int { return m.tracker.Active() }

func (m *Manager) Handlers() []string { return m.registry.Names() }

// Shutdown stops new work, waits for tracked work and then runs the
// registry with whatever time is left. Only the first call does anything.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return nil
	}
	m.done = true
	m.mu.Unlock()

	start := time.Now()
	m.cancel()
	m.tracker.Close()
	if n := m.tracker.Active(); n > 0 {
		m.logger.Info("waiting for in-flight evaluations", zap.Int("active", n))
	}
	if err := m.tracker.Wait(m.timeout); err != nil {
		m.logger.Warn("evaluations still running", zap.Int("active", m.tracker.Active()), zap.Error(err))
	}

	remaining := max(m.timeout-time.Since(start), time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), remaining)
	defer cancel()

	err := m.registry.Run(ctx)
	if err != nil {
		m.logger.Error("shutdown finished with errors", zap.Error(err), zap.Duration("duration", time.Since(start)))
	} else {
		m.logger.Info("shutdown complete", zap.Duration("duration", time.Since(start)))
	}

	if m.started {
		signal.Stop(m.sigCh)
	}
	return err
}
