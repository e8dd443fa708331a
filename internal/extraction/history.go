package extraction

import (
	"sync"
	"time"
)

// HistoryEntry is one past extraction kept for display.
type HistoryEntry struct {
	At     time.Time `json:"at"`
	Source Source    `json:"source"`
	Bill   Bill      `json:"bill"`
}

// History is a caller-owned, capacity-bounded append-only log of past
// extractions. When full, the oldest entry is evicted. It is safe for
// concurrent use so one instance can be shared across requests.
type History struct {
	mu       sync.Mutex
	capacity int
	entries  []HistoryEntry
}

// NewHistory creates a History holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{capacity: capacity}
}

// Append records an extraction, evicting the oldest entry when full.
func (h *History) Append(entry HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[len(h.entries)-h.capacity:]
	}
}

// Entries returns a copy of the log, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
