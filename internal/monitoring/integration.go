package monitoring

import (
	"sync"
)

// The process-wide collector that joins report into. Nil means nothing is
// recorded, which is the state until EnableGlobalMonitoring is called.
//
//nolint:gochecknoglobals // one collector shared by every DataFrame in the process
var (
	globalCollector *MetricsCollector
	globalMutex     sync.RWMutex
)

// SetGlobalCollector swaps the collector joins report into. Tests use it to
// restore the previous collector; nil turns recording off.
func SetGlobalCollector(collector *MetricsCollector) {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalCollector = collector
}

// GetGlobalCollector returns the installed collector, or nil.
func GetGlobalCollector() *MetricsCollector {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return globalCollector
}

// RecordGlobal is called once per finished join. It drops m when no collector
// is installed or the installed one is disabled.
func RecordGlobal(m OperationMetrics) {
	if collector := GetGlobalCollector(); collector != nil {
		collector.Record(m)
	}
}

// IsGlobalMonitoringEnabled reports whether the next join will be recorded.
func IsGlobalMonitoringEnabled() bool {
	collector := GetGlobalCollector()
	return collector != nil && collector.IsEnabled()
}

// EnableGlobalMonitoring installs a fresh, enabled collector. Records from an
// earlier collector are discarded.
func EnableGlobalMonitoring() {
	SetGlobalCollector(NewMetricsCollector(true))
}

// DisableGlobalMonitoring stops recording but keeps what was already recorded
// readable through GetGlobalMetrics and GetGlobalSummary.
func DisableGlobalMonitoring() {
	if collector := GetGlobalCollector(); collector != nil {
		collector.SetEnabled(false)
	}
}

// GetGlobalMetrics returns a copy of the recorded joins, oldest first. It is
// empty, never nil, when nothing is installed.
func GetGlobalMetrics() []OperationMetrics {
	if collector := GetGlobalCollector(); collector != nil {
		return collector.GetMetrics()
	}
	return []OperationMetrics{}
}

// GetGlobalSummary totals the recorded joins; the zero MetricsSummary when
// nothing is installed or nothing was recorded.
func GetGlobalSummary() MetricsSummary {
	if collector := GetGlobalCollector(); collector != nil {
		return collector.GetSummary()
	}
	return MetricsSummary{}
}
