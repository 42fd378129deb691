package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Call dispatch metrics
	CallsPlacedTotal       int64
	CallPlacementErrors    int64
	CallsResolvedTotal     int64
	DuplicateResponsesTotal int64

	// WebSocket metrics
	StaffConnectionsTotal    int64
	StaffDisconnectionsTotal int64
	EventsDeliveredTotal     int64
	DeliveriesDroppedTotal   int64
	activeConnections        int64

	// Push metrics
	PushSendsTotal  int64
	PushErrorsTotal int64

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			startTime: time.Now(),
		}
	})
	return instance
}

// RecordCallPlaced increments the placed-call counter
func (m *Metrics) RecordCallPlaced() {
	m.mu.Lock()
	m.CallsPlacedTotal++
	m.mu.Unlock()
}

// RecordCallPlacementError increments the placement error counter
func (m *Metrics) RecordCallPlacementError() {
	m.mu.Lock()
	m.CallPlacementErrors++
	m.mu.Unlock()
}

// RecordCallResolved increments the resolved-call counter
func (m *Metrics) RecordCallResolved() {
	m.mu.Lock()
	m.CallsResolvedTotal++
	m.mu.Unlock()
}

// RecordDuplicateResponse increments the duplicate-response counter
func (m *Metrics) RecordDuplicateResponse() {
	m.mu.Lock()
	m.DuplicateResponsesTotal++
	m.mu.Unlock()
}

// RecordStaffConnect increments connection counters
func (m *Metrics) RecordStaffConnect() {
	m.mu.Lock()
	m.StaffConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordStaffDisconnect increments the disconnection counter
func (m *Metrics) RecordStaffDisconnect() {
	m.mu.Lock()
	m.StaffDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// RecordEventDelivered increments the delivered-event counter
func (m *Metrics) RecordEventDelivered() {
	m.mu.Lock()
	m.EventsDeliveredTotal++
	m.mu.Unlock()
}

// RecordDeliveryDropped increments the dropped-delivery counter
func (m *Metrics) RecordDeliveryDropped() {
	m.mu.Lock()
	m.DeliveriesDroppedTotal++
	m.mu.Unlock()
}

// RecordPushSend increments the push-send counter
func (m *Metrics) RecordPushSend() {
	m.mu.Lock()
	m.PushSendsTotal++
	m.mu.Unlock()
}

// RecordPushError increments the push error counter
func (m *Metrics) RecordPushError() {
	m.mu.Lock()
	m.PushErrorsTotal++
	m.mu.Unlock()
}

// ActiveConnections returns the current number of staff connections
func (m *Metrics) ActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Snapshot returns the current metric values as a map
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"calls_placed_total":        m.CallsPlacedTotal,
		"call_placement_errors":     m.CallPlacementErrors,
		"calls_resolved_total":      m.CallsResolvedTotal,
		"duplicate_responses_total": m.DuplicateResponsesTotal,
		"staff_connections_total":   m.StaffConnectionsTotal,
		"staff_disconnections_total": m.StaffDisconnectionsTotal,
		"events_delivered_total":    m.EventsDeliveredTotal,
		"deliveries_dropped_total":  m.DeliveriesDroppedTotal,
		"active_connections":        m.activeConnections,
		"push_sends_total":          m.PushSendsTotal,
		"push_errors_total":         m.PushErrorsTotal,
		"uptime_seconds":            time.Since(m.startTime).Seconds(),
	}
}

// Handler serves the metrics snapshot as JSON
func Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Get().Snapshot())
}
