package deferred

import (
	"context"
	"sync"
	"time"

	"analytics-service/models"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore keeps deferred events in process memory. It suits tests and
// single-instance deployments; entries are not shared across instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) ForVisitor(visitorID string) Store {
	return &memoryVisitorStore{parent: s, visitorID: visitorID}
}

func (s *MemoryStore) key(visitorID string, name models.EventName) string {
	return visitorID + ":" + string(name)
}

func (s *MemoryStore) set(visitorID string, name models.EventName, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[s.key(visitorID, name)] = memoryEntry{
		payload:   append([]byte(nil), payload...),
		expiresAt: s.now().Add(s.ttl),
	}
}

func (s *MemoryStore) getAndClear(visitorID string, name models.EventName) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.key(visitorID, name)
	e, ok := s.entries[k]
	if !ok {
		return nil, false
	}
	delete(s.entries, k)
	if !s.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.payload, true
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

type memoryVisitorStore struct {
	parent    *MemoryStore
	visitorID string
}

func (m *memoryVisitorStore) Set(_ context.Context, name models.EventName, payload []byte) {
	m.parent.set(m.visitorID, name, payload)
}

func (m *memoryVisitorStore) GetAndClear(_ context.Context, name models.EventName) ([]byte, bool) {
	return m.parent.getAndClear(m.visitorID, name)
}

var _ Backend = (*MemoryStore)(nil)
