package common

import (
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// OperationMetrics tracks per-database, per-operation call counts and
// latency for the provider layer, exported in Prometheus text format.
type OperationMetrics struct {
	set *metrics.Set
}

// NewOperationMetrics creates a fresh, unregistered metrics set so tests
// don't collide with each other on the global default set.
func NewOperationMetrics() *OperationMetrics {
	return &OperationMetrics{set: metrics.NewSet()}
}

// Observe records one call to op against database db, along with the
// duration it took in seconds.
func (m *OperationMetrics) Observe(db, op string, seconds float64) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`kvprovider_operations_total{database=%q,op=%q}`, db, op)).Inc()
	m.set.GetOrCreateHistogram(fmt.Sprintf(`kvprovider_operation_duration_seconds{database=%q,op=%q}`, db, op)).Update(seconds)
}

// WritePrometheus writes every tracked metric in Prometheus exposition
// format, for use by an HTTP /metrics handler.
func (m *OperationMetrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}
