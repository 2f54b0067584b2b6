package db

import (
	"context"
	"sync"
	"time"
)

// DefaultChannelCapacity is the default buffer size for queued writes.
const DefaultChannelCapacity = 256

// DefaultDrainTimeout bounds how long Stop waits for queued writes.
const DefaultDrainTimeout = 10 * time.Second

// WriteOperation is one queued write.
type WriteOperation[T any] struct {
	Data      T
	Timestamp time.Time
}

// WriteHandler processes a queued write. It owns its error reporting.
type WriteHandler[T any] func(op WriteOperation[T]) error

// AsyncWriter moves writes off the caller's goroutine through a buffered
// channel. Write never blocks: a full queue drops the operation.
type AsyncWriter[T any] struct {
	writeChan chan WriteOperation[T]
	handler   WriteHandler[T]
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	started   bool
	dropped   int64
	mu        sync.Mutex
}

// AsyncWriterConfig holds configuration for the async writer.
type AsyncWriterConfig struct {
	ChannelCapacity int
	DrainTimeout    time.Duration
}

// DefaultAsyncWriterConfig returns the default configuration.
func DefaultAsyncWriterConfig() AsyncWriterConfig {
	return AsyncWriterConfig{
		ChannelCapacity: DefaultChannelCapacity,
		DrainTimeout:    DefaultDrainTimeout,
	}
}

// NewAsyncWriter creates a writer with default configuration.
func NewAsyncWriter[T any](handler WriteHandler[T]) *AsyncWriter[T] {
	return NewAsyncWriterWithConfig(handler, DefaultAsyncWriterConfig())
}

// NewAsyncWriterWithConfig creates a writer with custom configuration.
func NewAsyncWriterWithConfig[T any](handler WriteHandler[T], config AsyncWriterConfig) *AsyncWriter[T] {
	if config.ChannelCapacity <= 0 {
		config.ChannelCapacity = DefaultChannelCapacity
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncWriter[T]{
		writeChan: make(chan WriteOperation[T], config.ChannelCapacity),
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the background goroutine. Calling it twice is a no-op.
func (w *AsyncWriter[T]) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.processWrites()
}

func (w *AsyncWriter[T]) processWrites() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			w.drainChannel()
			return
		case op := <-w.writeChan:
			_ = w.handler(op)
		}
	}
}

func (w *AsyncWriter[T]) drainChannel() {
	for {
		select {
		case op := <-w.writeChan:
			_ = w.handler(op)
		default:
			return
		}
	}
}

// Write queues data. It reports false, and counts a drop, when the queue is
// full.
func (w *AsyncWriter[T]) Write(data T) bool {
	select {
	case w.writeChan <- WriteOperation[T]{Data: data, Timestamp: time.Now()}:
		return true
	default:
		w.mu.Lock()
		w.dropped++
		w.mu.Unlock()
		return false
	}
}

// Pending returns the number of queued operations.
func (w *AsyncWriter[T]) Pending() int {
	return len(w.writeChan)
}

// Dropped returns how many writes were refused because the queue was full.
func (w *AsyncWriter[T]) Dropped() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

// Stop cancels the writer and waits for the queue to drain.
func (w *AsyncWriter[T]) Stop() {
	w.cancel()
	w.wg.Wait()
}

// StopWithTimeout is Stop bounded by timeout. It reports whether the drain
// finished in time.
func (w *AsyncWriter[T]) StopWithTimeout(timeout time.Duration) bool {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// IsStarted returns whether the background goroutine is running.
func (w *AsyncWriter[T]) IsStarted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}
