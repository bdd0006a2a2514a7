package memory

import "sync"

// Memory is a bounded, oldest-first log of observations an agent can feed
// back into its prompts.
type Memory struct {
	entries  []string
	capacity int
	mu       sync.RWMutex
}

func NewMemory(capacity int) *Memory {
	return &Memory{
		entries:  make([]string, 0, capacity),
		capacity: capacity,
	}
}

// GetAllMessages returns a copy of all entries in memory
func (m *Memory) GetAllMessages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]string, len(m.entries))
	copy(entries, m.entries)
	return entries
}

// Recent returns up to the last n entries, oldest first.
func (m *Memory) Recent(n int) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n > len(m.entries) {
		n = len(m.entries)
	}
	if n <= 0 {
		return nil
	}
	entries := make([]string, n)
	copy(entries, m.entries[len(m.entries)-n:])
	return entries
}

// Store appends an entry, evicting the oldest one when full. A zero
// capacity memory stores nothing.
func (m *Memory) Store(entry string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.capacity <= 0 {
		return
	}
	if len(m.entries) == m.capacity {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, entry)
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = m.entries[:0]
}
