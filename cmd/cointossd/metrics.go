// metrics.go - Metrics collection for the coin toss daemon
package main

import (
	"sync"
	"time"
)

// Predefined metric names
const (
	MetricBetsCreated       = "bets_created"
	MetricBetsSettled       = "bets_settled"
	MetricCallbacksReceived = "callbacks_received"
	MetricQueriesServed     = "queries_served"
	MetricErrorCount        = "error_count"
	MetricOpenBets          = "open_bets"
)

// MetricsCollector manages counters and gauges for the daemon
type MetricsCollector struct {
	mu        sync.RWMutex
	counters  map[string]int64
	gauges    map[string]float64
	startTime time.Time
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:  make(map[string]int64),
		gauges:    make(map[string]float64),
		startTime: time.Now(),
	}
}

// IncrementCounter increments a counter metric
func (mc *MetricsCollector) IncrementCounter(name string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.counters[name]++
}

// SetGauge sets a gauge metric value
func (mc *MetricsCollector) SetGauge(name string, value float64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.gauges[name] = value
}

// Summary returns a snapshot of all metrics plus uptime
func (mc *MetricsCollector) Summary() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	counters := make(map[string]int64, len(mc.counters))
	for k, v := range mc.counters {
		counters[k] = v
	}
	gauges := make(map[string]float64, len(mc.gauges))
	for k, v := range mc.gauges {
		gauges[k] = v
	}
	return map[string]interface{}{
		"counters":       counters,
		"gauges":         gauges,
		"uptime_seconds": time.Since(mc.startTime).Seconds(),
	}
}

// Reset resets all metrics
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.counters = make(map[string]int64)
	mc.gauges = make(map[string]float64)
	mc.startTime = time.Now()
}
