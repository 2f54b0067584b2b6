package metrics

import "xsmodels/xspec"

// Collector is what the API reads metrics from.
type Collector interface {
	xspec.CallRecorder

	GetCallMetrics() CallMetrics
	GetRecentCalls(limit int) []CallRecord
	GetSystemStatus() SystemStatus
}
