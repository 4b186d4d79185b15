package phenograph

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Memo caches vertex colors for a single trace scope. Vertex identifiers
// are only unique within one event, so a memo must never outlive the DAG
// and basis it was filled against.
//
// Memo is safe for concurrent use. The first color stored for a vertex
// wins, so every reader observes the same value.
type Memo struct {
	id string

	mu     sync.RWMutex
	colors map[Vertex]ColorMatrix

	hits   atomic.Int64
	misses atomic.Int64
}

// MemoStats summarises memo usage.
type MemoStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// NewMemo returns an empty memo with a fresh scope identifier.
func NewMemo() *Memo {
	return &Memo{
		id:     uuid.NewString(),
		colors: make(map[Vertex]ColorMatrix),
	}
}

// ID returns the scope identifier.
func (m *Memo) ID() string {
	return m.id
}

// Len returns the number of cached vertices.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.colors)
}

// Stats returns a snapshot of the cache counters.
func (m *Memo) Stats() MemoStats {
	return MemoStats{
		Entries: m.Len(),
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
	}
}

// Clear discards every cached color and resets the counters.
func (m *Memo) Clear() {
	m.mu.Lock()
	m.colors = make(map[Vertex]ColorMatrix)
	m.mu.Unlock()
	m.hits.Store(0)
	m.misses.Store(0)
}

func (m *Memo) get(v Vertex) (ColorMatrix, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.colors[v]
	return c, ok
}

// lookup is get with hit accounting.
func (m *Memo) lookup(v Vertex) (ColorMatrix, bool) {
	c, ok := m.get(v)
	if ok {
		m.hits.Add(1)
	}
	return c, ok
}

// store records c for v unless another writer got there first, and returns
// the color that is now cached.
func (m *Memo) store(v Vertex, c ColorMatrix) ColorMatrix {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.colors[v]; ok {
		return existing
	}
	m.colors[v] = c
	m.misses.Add(1)
	return c
}
