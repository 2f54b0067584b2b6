package metrics

import (
	"errors"
	"sync"
	"time"

	"xsmodels/xspec"
)

// Store keeps aggregate counters and a ring of recent calls. It implements
// xspec.CallRecorder, so a Session can feed it directly.
//
// Usage:
//
//	store := NewStore(DefaultStoreConfig(), time.Now())
//	session := xspec.NewSession(lib, xspec.WithRecorder(store))
type Store struct {
	mu sync.RWMutex

	history []CallRecord
	cap     int
	head    int
	size    int

	total     int64
	success   int64
	errors    int64
	bins      int64
	byModel   map[string]*modelStats
	byErrKind map[string]int64

	startTime time.Time
	version   string
	backend   string
	ready     func() bool
	sink      func(CallRecord)
}

type modelStats struct {
	count         int64
	successCount  int64
	totalDuration time.Duration
	maxDuration   time.Duration
}

// StoreConfig configures a Store.
type StoreConfig struct {
	// HistoryCapacity is how many recent calls are kept.
	HistoryCapacity int
	Version         string
	Backend         string

	// Ready reports whether the library has initialised. Nil means always.
	Ready func() bool

	// Sink receives every record after it is counted, e.g. to persist it.
	// It is called with no lock held and must not block.
	Sink func(CallRecord)
}

// DefaultStoreConfig keeps the last 100 calls.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		HistoryCapacity: 100,
		Version:         "0.0.0",
	}
}

// NewStore creates a Store. startTime is the zero point for uptime.
func NewStore(config StoreConfig, startTime time.Time) *Store {
	capacity := config.HistoryCapacity
	if capacity < 1 {
		capacity = 100
	}
	return &Store{
		history:   make([]CallRecord, capacity),
		cap:       capacity,
		byModel:   make(map[string]*modelStats),
		byErrKind: make(map[string]int64),
		startTime: startTime,
		version:   config.Version,
		backend:   config.Backend,
		ready:     config.Ready,
		sink:      config.Sink,
	}
}

// RecordCall converts a finished evaluation into a CallRecord and records
// it.
func (s *Store) RecordCall(info xspec.CallInfo) {
	rec := CallRecord{
		ID:         info.ID,
		Model:      info.Model,
		Convention: info.Convention.String(),
		Bins:       info.Bins,
		Spectrum:   info.Spectrum,
		Status:     CallStatusSuccess,
		StartTime:  time.Now().Add(-info.Duration),
		Duration:   info.Duration,
	}
	if info.Err != nil {
		rec.Status = CallStatusError
		rec.ErrorMsg = info.Err.Error()
		rec.ErrorKind = ErrorKind(info.Err)
	}
	s.Record(rec)
}

// Record stores rec.
func (s *Store) Record(rec CallRecord) {
	s.mu.Lock()
	s.history[s.head] = rec
	s.head = (s.head + 1) % s.cap
	if s.size < s.cap {
		s.size++
	}

	s.total++
	s.bins += int64(rec.Bins)
	if rec.Status == CallStatusSuccess {
		s.success++
	} else {
		s.errors++
		if rec.ErrorKind != "" {
			s.byErrKind[rec.ErrorKind]++
		}
	}

	stats, ok := s.byModel[rec.Model]
	if !ok {
		stats = &modelStats{}
		s.byModel[rec.Model] = stats
	}
	stats.count++
	if rec.Status == CallStatusSuccess {
		stats.successCount++
	}
	stats.totalDuration += rec.Duration
	if rec.Duration > stats.maxDuration {
		stats.maxDuration = rec.Duration
	}
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink(rec)
	}
}

// ErrorKind names the category of an evaluation error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, xspec.ErrInvalidShape):
		return "invalid_shape"
	case errors.Is(err, xspec.ErrEnvironment):
		return "environment"
	case errors.Is(err, xspec.ErrLookup):
		return "lookup"
	case errors.Is(err, xspec.ErrNative):
		return "native"
	default:
		return "other"
	}
}

// GetCallMetrics returns the aggregate counters.
func (s *Store) GetCallMetrics() CallMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := CallMetrics{
		TotalCalls:   s.total,
		TotalSuccess: s.success,
		TotalErrors:  s.errors,
		TotalBins:    s.bins,
		ByModel:      make(map[string]*ModelMetrics, len(s.byModel)),
		ByErrorKind:  make(map[string]int64, len(s.byErrKind)),
	}
	for model, stats := range s.byModel {
		mm := &ModelMetrics{Count: stats.count, MaxDuration: stats.maxDuration}
		if stats.count > 0 {
			mm.SuccessRate = float64(stats.successCount) / float64(stats.count) * 100
			mm.AvgDuration = stats.totalDuration / time.Duration(stats.count)
		}
		m.ByModel[model] = mm
	}
	for kind, n := range s.byErrKind {
		m.ByErrorKind[kind] = n
	}
	return m
}

// GetRecentCalls returns up to limit records, oldest first.
func (s *Store) GetRecentCalls(limit int) []CallRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || s.size == 0 {
		return []CallRecord{}
	}
	if limit > s.size {
		limit = s.size
	}
	out := make([]CallRecord, limit)
	for i := 0; i < limit; i++ {
		out[i] = s.history[(s.head-limit+i+s.cap)%s.cap]
	}
	return out
}

// GetSystemStatus reports health from the library's readiness.
func (s *Store) GetSystemStatus() SystemStatus {
	ready := s.ready == nil || s.ready()
	health := SystemHealthRunning
	if !ready {
		health = SystemHealthDegraded
	}
	return SystemStatus{
		Health:    health,
		Version:   s.version,
		Backend:   s.backend,
		Ready:     ready,
		Uptime:    time.Since(s.startTime),
		LastCheck: time.Now(),
	}
}

var _ Collector = (*Store)(nil)
