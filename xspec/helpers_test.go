package xspec

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"xsmodels/db"
	"xsmodels/native"
)

// spyLib wraps the reference backend and records setup calls.
type spyLib struct {
	*native.Reference

	mu        sync.Mutex
	initCalls int
	initOut   string
	initErr   error
	initPanic bool
	models    []native.ModelEntry
}

func (l *spyLib) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initCalls++
	if l.initOut != "" {
		fmt.Print(l.initOut)
	}
	if l.initPanic {
		panic("boom")
	}
	return l.initErr
}

func (l *spyLib) Models() []native.ModelEntry {
	if l.models != nil {
		return l.models
	}
	return l.Reference.Models()
}

func (l *spyLib) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.initCalls
}

func newSpyLib(t *testing.T) *spyLib {
	t.Helper()
	ref, err := native.OpenReference(db.MemoryPath)
	if err != nil {
		t.Fatalf("OpenReference() error = %v", err)
	}
	t.Cleanup(func() { ref.Close() })
	if err := ref.SetChatter(0); err != nil {
		t.Fatalf("SetChatter() error = %v", err)
	}
	return &spyLib{Reference: ref}
}

func withHeadas(name string) (string, bool) {
	if name == DefaultEnvVar {
		return "/opt/heasoft", true
	}
	return "", false
}

func withoutEnv(string) (string, bool) { return "", false }

// newTestSession returns a session over lib that passes the environment
// check.
func newTestSession(t *testing.T, lib native.Library, opts ...SessionOption) *Session {
	t.Helper()
	opts = append([]SessionOption{WithLookupEnv(withHeadas)}, opts...)
	return NewSession(lib, opts...)
}

// countingC is a C-style model that records every call.
type countingC struct {
	calls    int
	spectrum int
	initStr  string
	err      error
}

func (c *countingC) fn(energy []float64, nFlux int, params []float64, spectrum int, flux, _ []float64, initStr string) error {
	c.calls++
	c.spectrum = spectrum
	c.initStr = initStr
	if c.err != nil {
		return c.err
	}
	for i := 0; i < nFlux; i++ {
		flux[i] = params[0] * (energy[i+1] - energy[i])
	}
	return nil
}

type recorder struct {
	mu    sync.Mutex
	calls []CallInfo
}

func (r *recorder) RecordCall(info CallInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, info)
}

func wantErrorAs[E error](t *testing.T, err error) E {
	t.Helper()
	var target E
	if !errors.As(err, &target) {
		t.Fatalf("error = %v (%T), want %T", err, err, target)
	}
	return target
}
