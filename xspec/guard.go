package xspec

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"xsmodels/native"
)

// DefaultEnvVar locates the HEASoft installation the library reads its data
// files from.
const DefaultEnvVar = "HEADAS"

// Guard runs the library's one-time setup on first use. Unlike sync.Once a
// failed setup is not remembered: the next call tries again.
type Guard struct {
	mu       sync.Mutex
	ready    bool
	attempts int

	envVar    string
	lookupEnv func(string) (string, bool)
	init      func() error
	capture   func(func() error) (string, error)
	logger    *zap.Logger
}

// NewGuard returns a Guard that runs init with standard output captured.
func NewGuard(init func() error, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		envVar:    DefaultEnvVar,
		lookupEnv: os.LookupEnv,
		init:      init,
		capture:   native.CaptureStdout,
		logger:    logger,
	}
}

// EnsureReady runs setup if it has not yet succeeded. It returns a
// *ConfigurationError when the environment variable is missing and an
// *InitializationError, carrying the captured output, when setup fails.
func (g *Guard) EnsureReady() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ready {
		return nil
	}
	if v, ok := g.lookupEnv(g.envVar); !ok || v == "" {
		return &ConfigurationError{Variable: g.envVar}
	}

	g.attempts++
	out, err := g.capture(g.safeInit)
	if err != nil {
		g.logger.Warn("model library initialization failed",
			zap.Int("attempt", g.attempts),
			zap.String("output", out),
			zap.Error(err))
		return &InitializationError{Output: out, Err: err}
	}

	g.ready = true
	g.logger.Debug("model library initialized",
		zap.Int("attempt", g.attempts),
		zap.Int("output_bytes", len(out)))
	return nil
}

// safeInit turns a panic in setup into an error so the capture can report
// what was printed before it.
func (g *Guard) safeInit() (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during initialization: %v", p)
		}
	}()
	return g.init()
}

// Ready reports whether setup has succeeded.
func (g *Guard) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

// Attempts returns how many times setup has been run.
func (g *Guard) Attempts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts
}
