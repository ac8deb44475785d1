package apiclient

import (
	"sync/atomic"
	"time"
)

// Metrics tracks upstream call metrics
type Metrics struct {
	calls        atomic.Int64
	errors       atomic.Int64
	latencyNanos atomic.Int64 // Total latency in nanoseconds
}

// Snapshot is a point-in-time copy of Metrics.
type Snapshot struct {
	Calls        int64 `json:"calls"`
	Errors       int64 `json:"errors"`
	LatencyNanos int64 `json:"-"`
}

// Snapshot returns the current metrics snapshot
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Calls:        m.calls.Load(),
		Errors:       m.errors.Load(),
		LatencyNanos: m.latencyNanos.Load(),
	}
}

func (m *Metrics) record(duration time.Duration, err error) {
	m.calls.Add(1)
	m.latencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.errors.Add(1)
	}
}

// AverageLatency returns the average latency in milliseconds
func (s Snapshot) AverageLatency() float64 {
	if s.Calls == 0 {
		return 0
	}
	avgNs := float64(s.LatencyNanos) / float64(s.Calls)
	return avgNs / 1e6
}

// ErrorRate returns the error rate as a percentage
func (s Snapshot) ErrorRate() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Calls) * 100
}
