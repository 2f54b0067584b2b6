// Package shutdown drains in-flight model evaluations and releases the
// server's resources when the process is asked to stop.
package shutdown

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrClosed is returned for work offered after shutdown began.
	ErrClosed = errors.New("shutting down")

	// ErrDrainTimeout means evaluations were still running at the deadline.
	ErrDrainTimeout = errors.New("timed out waiting for in-flight evaluations")
)

// Tracker counts in-flight evaluations.
type Tracker struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	active int
	closed bool
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Acquire registers one evaluation. It returns false after Close, and the
// caller must then refuse the work. A true result must be paired with
// Release.
func (t *Tracker) Acquire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.active++
	t.wg.Add(1)
	return true
}

func (t *Tracker) Release() {
	t.mu.Lock()
	t.active--
	t.mu.Unlock()
	t.wg.Done()
}

// Close stops new evaluations from being acquired.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

func (t *Tracker) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Wait blocks until every acquired evaluation is released, or timeout.
func (t *Tracker) Wait(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrDrainTimeout
	}
}
