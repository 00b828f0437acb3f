package candidate

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used in development mode and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	rows    map[int64]Candidate
	byEmail map[string]int64
	nextID  int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:    make(map[int64]Candidate),
		byEmail: make(map[string]int64),
		nextID:  1,
	}
}

func (m *MemoryStore) List(_ context.Context) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Candidate, 0, len(m.rows))
	for _, c := range m.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Find(_ context.Context, q Query) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Candidate, 0)
	for _, c := range m.rows {
		if q.Match(&c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return q.Less(&out[i], &out[j]) })
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (*Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryStore) Create(_ context.Context, c Candidate) (*Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.byEmail[emailKey(c.Email)]; dup {
		return nil, ErrConflict
	}
	m.insertLocked(&c)
	return &c, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id int64, u StatusUpdate) (*Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.Stage != nil {
		c.Stage = *u.Stage
	}
	if u.Rating != nil {
		c.Rating = *u.Rating
	}
	m.rows[id] = c
	return &c, nil
}

func (m *MemoryStore) InsertBatch(_ context.Context, cs []Candidate) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		k := emailKey(c.Email)
		if _, dup := m.byEmail[k]; dup {
			return 0, ErrConflict
		}
		if _, dup := seen[k]; dup {
			return 0, ErrConflict
		}
		seen[k] = struct{}{}
	}
	for i := range cs {
		c := cs[i]
		m.insertLocked(&c)
	}
	return len(cs), nil
}

func (m *MemoryStore) Reset(_ context.Context, cs []Candidate) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		k := emailKey(c.Email)
		if _, dup := seen[k]; dup {
			return 0, ErrConflict
		}
		seen[k] = struct{}{}
	}

	m.rows = make(map[int64]Candidate, len(cs))
	m.byEmail = make(map[string]int64, len(cs))
	for i := range cs {
		c := cs[i]
		m.insertLocked(&c)
	}
	return len(cs), nil
}

func (m *MemoryStore) Close() {}

// insertLocked assigns the next id to c and stores it. m.mu must be held.
func (m *MemoryStore) insertLocked(c *Candidate) {
	c.ID = m.nextID
	m.nextID++
	m.rows[c.ID] = *c
	m.byEmail[emailKey(c.Email)] = c.ID
}

// emailKey mirrors the unique constraint of the SQL store, which compares
// emails byte for byte after trimming.
func emailKey(email string) string {
	return strings.TrimSpace(email)
}
