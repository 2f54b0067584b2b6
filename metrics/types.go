// Package metrics aggregates model evaluations in memory for the HTTP API
// and the command line tool.
package metrics

import "time"

// CallRecord is one model evaluation.
type CallRecord struct {
	ID         string        `json:"id"`
	Model      string        `json:"model"`
	Convention string        `json:"convention"`
	Bins       int           `json:"bins"`
	Spectrum   int           `json:"spectrum"`
	Status     string        `json:"status"`
	StartTime  time.Time     `json:"start_time"`
	Duration   time.Duration `json:"duration"`
	ErrorMsg   string        `json:"error_msg,omitempty"`

	// ErrorKind is the error category, empty on success.
	ErrorKind string `json:"error_kind,omitempty"`
}

// SystemStatus is the health summary served by the API.
type SystemStatus struct {
	Health    string        `json:"health"`
	Version   string        `json:"version"`
	Backend   string        `json:"backend"`
	Ready     bool          `json:"ready"`
	Uptime    time.Duration `json:"uptime"`
	LastCheck time.Time     `json:"last_check"`
}

// CallMetrics aggregates every recorded call.
type CallMetrics struct {
	TotalCalls   int64                    `json:"total_calls"`
	TotalSuccess int64                    `json:"total_success"`
	TotalErrors  int64                    `json:"total_errors"`
	TotalBins    int64                    `json:"total_bins"`
	ByModel      map[string]*ModelMetrics `json:"by_model"`
	ByErrorKind  map[string]int64         `json:"by_error_kind,omitempty"`
}

// ModelMetrics are the statistics for one model.
type ModelMetrics struct {
	Count       int64         `json:"count"`
	SuccessRate float64       `json:"success_rate"`
	AvgDuration time.Duration `json:"avg_duration"`
	MaxDuration time.Duration `json:"max_duration"`
}

const (
	CallStatusSuccess = "success"
	CallStatusError   = "error"
)

const (
	// SystemHealthRunning means the library is initialised.
	SystemHealthRunning = "running"
	// SystemHealthDegraded means the library has not initialised yet or
	// its last attempt failed.
	SystemHealthDegraded = "degraded"
)
