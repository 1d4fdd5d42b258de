package wl

import "sync"

// MockObserver provides a mock implementation of Observer for testing.
// It records every observation so applications can verify the
// instrumentation their protocol traffic produces.
type MockObserver struct {
	mu sync.RWMutex

	// Method call tracking
	sendCalls      int
	receiveCalls   int
	roundtripCalls int
	bindCalls      int
	dropCalls      int

	// Recorded arguments
	sentBytes     uint64
	receivedBytes uint64
	lastLatencyNs uint64
	boundIfaces   []string
	droppedIDs    []uint32
}

// NewMockObserver creates a new mock observer.
// This is useful for unit testing applications that instrument go-wl.
func NewMockObserver() *MockObserver {
	return &MockObserver{}
}

// ObserveSend implements the Observer interface
func (m *MockObserver) ObserveSend(objectID uint32, opcode uint16, bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendCalls++
	m.sentBytes += bytes
}

// ObserveReceive implements the Observer interface
func (m *MockObserver) ObserveReceive(objectID uint32, opcode uint16, bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receiveCalls++
	m.receivedBytes += bytes
}

// ObserveRoundtrip implements the Observer interface
func (m *MockObserver) ObserveRoundtrip(latencyNs uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundtripCalls++
	m.lastLatencyNs = latencyNs
}

// ObserveBind implements the Observer interface
func (m *MockObserver) ObserveBind(interfaceName string, version uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindCalls++
	m.boundIfaces = append(m.boundIfaces, interfaceName)
}

// ObserveDrop implements the Observer interface
func (m *MockObserver) ObserveDrop(objectID uint32, opcode uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropCalls++
	m.droppedIDs = append(m.droppedIDs, objectID)
}

// Testing utility methods

// SentBytes returns the total bytes observed by ObserveSend
func (m *MockObserver) SentBytes() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sentBytes
}

// ReceivedBytes returns the total bytes observed by ObserveReceive
func (m *MockObserver) ReceivedBytes() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.receivedBytes
}

// LastRoundtripNs returns the latency passed to the most recent
// ObserveRoundtrip call
func (m *MockObserver) LastRoundtripNs() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLatencyNs
}

// BoundInterfaces returns the interface names observed by ObserveBind,
// in call order
func (m *MockObserver) BoundInterfaces() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.boundIfaces))
	copy(out, m.boundIfaces)
	return out
}

// DroppedObjectIDs returns the object IDs observed by ObserveDrop, in
// call order
func (m *MockObserver) DroppedObjectIDs() []uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]uint32, len(m.droppedIDs))
	copy(out, m.droppedIDs)
	return out
}

// CallCounts returns the number of times each method has been called
func (m *MockObserver) CallCounts() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]int{
		"send":      m.sendCalls,
		"receive":   m.receiveCalls,
		"roundtrip": m.roundtripCalls,
		"bind":      m.bindCalls,
		"drop":      m.dropCalls,
	}
}

// Reset resets all call counters and recorded arguments
func (m *MockObserver) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sendCalls = 0
	m.receiveCalls = 0
	m.roundtripCalls = 0
	m.bindCalls = 0
	m.dropCalls = 0
	m.sentBytes = 0
	m.receivedBytes = 0
	m.lastLatencyNs = 0
	m.boundIfaces = nil
	m.droppedIDs = nil
}

// Compile-time interface check
var _ Observer = (*MockObserver)(nil)
