package xspec

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"xsmodels/logging"
	"xsmodels/native"
)

// CallInfo describes one finished native evaluation.
type CallInfo struct {
	ID         string
	Model      string
	Convention Convention
	Bins       int
	Spectrum   int
	Duration   time.Duration
	Err        error
}

// CallRecorder receives a CallInfo after every evaluation.
type CallRecorder interface {
	RecordCall(info CallInfo)
}

// Session is the handle on the process-wide library state. The library is
// not reentrant, so every call into it goes through the session's lock.
// Create one Session per process.
type Session struct {
	mu              sync.Mutex
	lib             native.Library
	guard           *Guard
	logger          *zap.Logger
	recorder        CallRecorder
	defaultSpectrum int

	catalogOnce sync.Once
	catalog     *Catalog
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithRecorder registers a CallRecorder.
func WithRecorder(r CallRecorder) SessionOption {
	return func(s *Session) { s.recorder = r }
}

// WithDefaultSpectrum changes the spectrum number used when a call does not
// pass WithSpectrum.
func WithDefaultSpectrum(n int) SessionOption {
	return func(s *Session) { s.defaultSpectrum = n }
}

// WithEnvVar changes the variable the guard requires before setup.
func WithEnvVar(name string) SessionOption {
	return func(s *Session) { s.guard.envVar = name }
}

// WithLookupEnv replaces os.LookupEnv for the guard's check.
func WithLookupEnv(fn func(string) (string, bool)) SessionOption {
	return func(s *Session) { s.guard.lookupEnv = fn }
}

// NewSession wraps lib. Nothing is sent to the library until the first
// operation that needs it.
func NewSession(lib native.Library, opts ...SessionOption) *Session {
	s := &Session{
		lib:             lib,
		logger:          zap.NewNop(),
		defaultSpectrum: DefaultSpectrum,
	}
	s.guard = NewGuard(lib.Init, nil)
	for _, opt := range opts {
		opt(s)
	}
	s.guard.logger = s.logger.Named("guard")
	return s
}

// EnsureReady runs the library's setup if it has not yet succeeded.
func (s *Session) EnsureReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guard.EnsureReady()
}

// Guard exposes the session's initialization guard.
func (s *Session) Guard() *Guard { return s.guard }

// Library returns the wrapped library.
func (s *Session) Library() native.Library { return s.lib }

// Close releases the library.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lib.Close()
}

// do runs fn against a ready library while holding the session lock.
func (s *Session) do(fn func(lib native.Library) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard.EnsureReady(); err != nil {
		return err
	}
	return fn(s.lib)
}

func (s *Session) observe(info CallInfo) {
	fields := logging.ModelCallFields(logging.ModelCall{
		CallID:     info.ID,
		Model:      info.Model,
		Convention: info.Convention.String(),
		Bins:       info.Bins,
		Spectrum:   info.Spectrum,
		Duration:   info.Duration,
	})
	if info.Err != nil {
		s.logger.Debug("model evaluation failed", append(fields, zap.Error(info.Err))...)
	} else {
		s.logger.Debug("model evaluated", fields...)
	}
	if s.recorder != nil {
		s.recorder.RecordCall(info)
	}
}
