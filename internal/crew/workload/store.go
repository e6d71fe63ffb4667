package workload

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// MutateFunc edits a record in place. created is true when the row did not exist before this call.
type MutateFunc func(rec *Record, created bool)

// Store persists ledger rows. Upsert must be atomic per key: two concurrent Upserts on the
// same key never lose an update and never create two rows.
type Store interface {
	// Get returns nil, nil when the key has no row.
	Get(ctx context.Context, key Key) (*Record, error)
	Upsert(ctx context.Context, key Key, mutate MutateFunc) (*Record, error)
	ListWeek(ctx context.Context, weekStart time.Time) ([]Record, error)
}

type memoryEntry struct {
	mu      sync.Mutex
	rec     Record
	present bool
}

// MemoryStore keeps the ledger in process.
type MemoryStore struct {
	entries *xsync.Map[string, *memoryEntry]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: xsync.NewMap[string, *memoryEntry]()}
}

func (s *MemoryStore) Get(_ context.Context, key Key) (*Record, error) {
	e, ok := s.entries.Load(key.String())
	if !ok {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.present {
		return nil, nil
	}
	rec := e.rec
	return &rec, nil
}

func (s *MemoryStore) Upsert(_ context.Context, key Key, mutate MutateFunc) (*Record, error) {
	e, ok := s.entries.Load(key.String())
	if !ok {
		e, _ = s.entries.LoadOrStore(key.String(), &memoryEntry{})
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	created := !e.present
	if created {
		e.rec = Record{CrewID: key.CrewID, WeekStart: key.WeekStart}
	}
	mutate(&e.rec, created)
	e.present = true

	rec := e.rec
	return &rec, nil
}

func (s *MemoryStore) ListWeek(_ context.Context, weekStart time.Time) ([]Record, error) {
	var out []Record
	s.entries.Range(func(_ string, e *memoryEntry) bool {
		e.mu.Lock()
		if e.present && e.rec.WeekStart.Equal(weekStart) {
			out = append(out, e.rec)
		}
		e.mu.Unlock()
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CrewID < out[j].CrewID })
	return out, nil
}
