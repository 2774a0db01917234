package sink

import (
	"sync"
	"time"

	"github.com/muurk/segmentform/internal/segment"
)

// DefaultHistorySize is how many records are kept when none is configured
const DefaultHistorySize = 100

// Record is one segment received by the sink
type Record struct {
	ID         string          `json:"id"`
	ReceivedAt time.Time       `json:"received_at"`
	RemoteAddr string          `json:"remote_addr,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	Segment    segment.Segment `json:"segment"`
}

// History is a bounded, concurrency-safe list of received records.
// Once full, the oldest record is dropped for each new one.
type History struct {
	mu      sync.RWMutex
	records []Record
	max     int
}

// NewHistory creates a history holding at most max records.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{
		records: make([]Record, 0, max),
		max:     max,
	}
}

// Add appends a record, evicting the oldest when full.
func (h *History) Add(r Record) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.records) == h.max {
		copy(h.records, h.records[1:])
		h.records = h.records[:len(h.records)-1]
	}
	h.records = append(h.records, r)
}

// List returns a copy of the records, oldest first.
func (h *History) List() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Get returns the record with id.
func (h *History) Get(id string) (Record, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, r := range h.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Len returns the number of stored records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
