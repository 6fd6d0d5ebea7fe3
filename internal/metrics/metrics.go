package metrics

import (
	"sync"
	"time"
)

// Metrics holds per-process run counters, exposed over the optional
// monitoring endpoints.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched       int64
	FeedsFailed        int64
	EntriesProcessed   int64
	RecordsDropped     int64
	DuplicatesFiltered int64
	GateRejected       int64
	DigestsPublished   int64

	// Status
	LastRunTime   time.Time
	LastRunTook   time.Duration
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) SetFeedsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched = int64(n)
}

func (m *Metrics) IncrementFeedsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFailed++
}

func (m *Metrics) IncrementEntriesProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesProcessed++
}

func (m *Metrics) IncrementRecordsDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordsDropped++
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementGateRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GateRejected++
}

func (m *Metrics) IncrementDigestsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DigestsPublished++
}

func (m *Metrics) SetLastRun(took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.LastRunTook = took
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":       m.FeedsFetched,
		"feeds_failed":        m.FeedsFailed,
		"entries_processed":   m.EntriesProcessed,
		"records_dropped":     m.RecordsDropped,
		"duplicates_filtered": m.DuplicatesFiltered,
		"gate_rejected":       m.GateRejected,
		"digests_published":   m.DigestsPublished,
		"last_run_time":       m.LastRunTime.Format(time.RFC3339),
		"last_run_took_ms":    m.LastRunTook.Milliseconds(),
		"last_error_time":     m.LastErrorTime.Format(time.RFC3339),
		"last_error":          m.LastError,
		"is_healthy":          m.IsHealthy,
	}
}
