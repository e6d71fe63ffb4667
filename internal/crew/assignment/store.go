package assignment

import (
	"context"
	"fmt"
	"sync"

	"crew-workers/internal/common/errors"

	"github.com/puzpuzpuz/xsync/v4"
)

// UpdateFunc edits an assignment under the store's per-assignment lock.
// Returning false leaves the stored row untouched.
type UpdateFunc func(a *CrewAssignment) (changed bool, err error)

// Store persists assignments. JobID is unique; Update is atomic per assignment.
type Store interface {
	Create(ctx context.Context, a *CrewAssignment) error
	Get(ctx context.Context, id string) (*CrewAssignment, error)
	GetByJob(ctx context.Context, jobID string) (*CrewAssignment, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (*CrewAssignment, error)
}

type memoryEntry struct {
	mu sync.Mutex
	a  *CrewAssignment
}

type MemoryStore struct {
	byID  *xsync.Map[string, *memoryEntry]
	byJob *xsync.Map[string, string]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  xsync.NewMap[string, *memoryEntry](),
		byJob: xsync.NewMap[string, string](),
	}
}

func (s *MemoryStore) Create(_ context.Context, a *CrewAssignment) error {
	s.byID.Store(a.ID, &memoryEntry{a: a.clone()})
	if existing, loaded := s.byJob.LoadOrStore(a.JobID, a.ID); loaded {
		s.byID.Delete(a.ID)
		return fmt.Errorf("%w: job %s already assigned as %s", errors.ErrDuplicateAssignment, a.JobID, existing)
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*CrewAssignment, error) {
	e, ok := s.byID.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrAssignmentNotFound, id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.a.clone(), nil
}

func (s *MemoryStore) GetByJob(ctx context.Context, jobID string) (*CrewAssignment, error) {
	id, ok := s.byJob.Load(jobID)
	if !ok {
		return nil, fmt.Errorf("%w: no assignment for job %s", errors.ErrAssignmentNotFound, jobID)
	}
	return s.Get(ctx, id)
}

func (s *MemoryStore) Update(_ context.Context, id string, fn UpdateFunc) (*CrewAssignment, error) {
	e, ok := s.byID.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrAssignmentNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	working := e.a.clone()
	changed, err := fn(working)
	if err != nil {
		return nil, err
	}
	if changed {
		e.a = working
	}
	return e.a.clone(), nil
}
