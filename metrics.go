package wl

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ehrlich-b/go-wl/internal/interfaces"
)

// LatencyBuckets defines the roundtrip latency histogram buckets in
// nanoseconds. Buckets cover from 1us to 10s with logarithmic spacing.
var LatencyBuckets = []uint64{
	1_000,          // 1us
	10_000,         // 10us
	100_000,        // 100us
	1_000_000,      // 1ms
	10_000_000,     // 10ms
	100_000_000,    // 100ms
	1_000_000_000,  // 1s
	10_000_000_000, // 10s
}

const numLatencyBuckets = 8

// Metrics tracks wire and dispatch statistics for one connection (or an
// aggregate over several, if the same instance is shared).
type Metrics struct {
	// Message counters
	MessagesSent     atomic.Uint64 // Requests/events written to the wire
	MessagesReceived atomic.Uint64 // Messages decoded off the wire
	Drops            atomic.Uint64 // Messages dropped by dispatch
	Roundtrips       atomic.Uint64 // Completed sync roundtrips
	Binds            atomic.Uint64 // Registry bind operations

	// Byte counters
	BytesSent     atomic.Uint64
	BytesReceived atomic.Uint64

	// Roundtrip latency tracking
	TotalRoundtripNs atomic.Uint64 // Cumulative roundtrip latency in nanoseconds

	// Latency histogram buckets (cumulative counts)
	// Each bucket[i] contains the count of roundtrips with latency <= LatencyBuckets[i]
	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	// Connection lifecycle
	StartTime atomic.Int64 // Connection start timestamp (UnixNano)
	StopTime  atomic.Int64 // Connection stop timestamp (UnixNano)

	mu       sync.RWMutex
	bindsByInterface map[string]uint64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	m := &Metrics{bindsByInterface: make(map[string]uint64)}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordSend records one message written to the wire
func (m *Metrics) RecordSend(bytes uint64) {
	m.MessagesSent.Add(1)
	m.BytesSent.Add(bytes)
}

// RecordReceive records one message decoded off the wire
func (m *Metrics) RecordReceive(bytes uint64) {
	m.MessagesReceived.Add(1)
	m.BytesReceived.Add(bytes)
}

// RecordDrop records one message dropped by dispatch
func (m *Metrics) RecordDrop() {
	m.Drops.Add(1)
}

// RecordRoundtrip records a completed sync roundtrip and updates the
// latency histogram
func (m *Metrics) RecordRoundtrip(latencyNs uint64) {
	m.Roundtrips.Add(1)
	m.TotalRoundtripNs.Add(latencyNs)

	// Update histogram buckets (cumulative)
	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// RecordBind records a registry bind of the named interface
func (m *Metrics) RecordBind(interfaceName string) {
	m.Binds.Add(1)
	m.mu.Lock()
	m.bindsByInterface[interfaceName]++
	m.mu.Unlock()
}

// Stop marks the connection as closed
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	// Message counts
	MessagesSent     uint64
	MessagesReceived uint64
	Drops            uint64
	Roundtrips       uint64
	Binds            uint64

	// Bytes transferred
	BytesSent     uint64
	BytesReceived uint64

	// Performance
	AvgRoundtripNs uint64
	UptimeNs       uint64

	// Roundtrip latency percentiles (in nanoseconds)
	RoundtripP50Ns  uint64 // 50th percentile (median)
	RoundtripP99Ns  uint64 // 99th percentile
	RoundtripP999Ns uint64 // 99.9th percentile

	// Histogram bucket counts (cumulative)
	LatencyHistogram [numLatencyBuckets]uint64

	// Computed statistics
	SendRate     float64 // Messages sent per second
	ReceiveRate  float64 // Messages received per second
	SendBandwidth    float64 // Bytes sent per second
	ReceiveBandwidth float64 // Bytes received per second
	DropRate     float64 // Percentage of received messages dropped

	// Per-interface bind counts
	BindsByInterface map[string]uint64
}

// Snapshot creates a point-in-time snapshot of metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		MessagesSent:     m.MessagesSent.Load(),
		MessagesReceived: m.MessagesReceived.Load(),
		Drops:            m.Drops.Load(),
		Roundtrips:       m.Roundtrips.Load(),
		Binds:            m.Binds.Load(),
		BytesSent:        m.BytesSent.Load(),
		BytesReceived:    m.BytesReceived.Load(),
	}

	// Calculate average roundtrip latency
	totalRoundtripNs := m.TotalRoundtripNs.Load()
	if snap.Roundtrips > 0 {
		snap.AvgRoundtripNs = totalRoundtripNs / snap.Roundtrips
	}

	// Calculate uptime
	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	// Calculate rates (messages and bandwidth per second)
	if snap.UptimeNs > 0 {
		uptimeSeconds := float64(snap.UptimeNs) / 1e9
		snap.SendRate = float64(snap.MessagesSent) / uptimeSeconds
		snap.ReceiveRate = float64(snap.MessagesReceived) / uptimeSeconds
		snap.SendBandwidth = float64(snap.BytesSent) / uptimeSeconds
		snap.ReceiveBandwidth = float64(snap.BytesReceived) / uptimeSeconds
	}

	// Calculate drop rate
	if snap.MessagesReceived > 0 {
		snap.DropRate = float64(snap.Drops) / float64(snap.MessagesReceived) * 100.0
	}

	// Copy histogram bucket counts
	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}

	// Calculate percentiles from histogram
	if snap.Roundtrips > 0 {
		snap.RoundtripP50Ns = m.calculatePercentile(0.50)
		snap.RoundtripP99Ns = m.calculatePercentile(0.99)
		snap.RoundtripP999Ns = m.calculatePercentile(0.999)
	}

	// Copy per-interface bind counts
	m.mu.RLock()
	snap.BindsByInterface = make(map[string]uint64, len(m.bindsByInterface))
	for k, v := range m.bindsByInterface {
		snap.BindsByInterface[k] = v
	}
	m.mu.RUnlock()

	return snap
}

// calculatePercentile estimates the latency at the given percentile (0.0-1.0)
// using linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(percentile float64) uint64 {
	total := m.Roundtrips.Load()
	if total == 0 {
		return 0
	}

	targetCount := uint64(float64(total) * percentile)

	// Find the bucket containing the target percentile
	prevBucket := uint64(0)
	for i, bucket := range LatencyBuckets {
		bucketCount := m.LatencyBuckets[i].Load()
		if bucketCount >= targetCount {
			// Linear interpolation within bucket
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.LatencyBuckets[i-1].Load()
			}
			if bucketCount == prevCount {
				return bucket
			}
			fraction := float64(targetCount-prevCount) / float64(bucketCount-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}

	// If we get here, the latency exceeds all buckets
	return LatencyBuckets[numLatencyBuckets-1]
}

// Reset resets all metrics counters (useful for testing)
func (m *Metrics) Reset() {
	m.MessagesSent.Store(0)
	m.MessagesReceived.Store(0)
	m.Drops.Store(0)
	m.Roundtrips.Store(0)
	m.Binds.Store(0)
	m.BytesSent.Store(0)
	m.BytesReceived.Store(0)
	m.TotalRoundtripNs.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyBuckets[i].Store(0)
	}
	m.mu.Lock()
	m.bindsByInterface = make(map[string]uint64)
	m.mu.Unlock()
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer allows pluggable instrumentation of the wire and dispatch
// layers. Implementations must be thread-safe; methods are called from
// the dispatch goroutine.
type Observer = interfaces.Observer

// NoOpObserver is a no-op implementation of Observer
type NoOpObserver struct{}

func (NoOpObserver) ObserveSend(uint32, uint16, uint64)    {}
func (NoOpObserver) ObserveReceive(uint32, uint16, uint64) {}
func (NoOpObserver) ObserveRoundtrip(uint64)               {}
func (NoOpObserver) ObserveBind(string, uint32)            {}
func (NoOpObserver) ObserveDrop(uint32, uint16)            {}

// MetricsObserver implements Observer using the built-in Metrics
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to the given metrics
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveSend(objectID uint32, opcode uint16, bytes uint64) {
	o.metrics.RecordSend(bytes)
}

func (o *MetricsObserver) ObserveReceive(objectID uint32, opcode uint16, bytes uint64) {
	o.metrics.RecordReceive(bytes)
}

func (o *MetricsObserver) ObserveRoundtrip(latencyNs uint64) {
	o.metrics.RecordRoundtrip(latencyNs)
}

func (o *MetricsObserver) ObserveBind(interfaceName string, version uint32) {
	o.metrics.RecordBind(interfaceName)
}

func (o *MetricsObserver) ObserveDrop(objectID uint32, opcode uint16) {
	o.metrics.RecordDrop()
}

// Compile-time interface check
var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
