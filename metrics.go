package hogsvd

import "time"

// MetricsCollector is notified of every decomposition and of every stage of
// the general path. Implementations must be safe for concurrent use. The
// metrics package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordDecomposition is called once per run. err is nil on success.
	RecordDecomposition(path Path, matrices int, duration time.Duration, err error)

	// RecordStage is called after each stage, whether or not it failed.
	RecordStage(stage string, duration time.Duration)
}

// NoopMetricsCollector discards everything.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordDecomposition(Path, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordStage(string, time.Duration)                  {}
