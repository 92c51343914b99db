package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage keeps user states in process memory. It is the default backend
// for single-instance deployments without Redis; abandoned conversations stay
// until the user resumes or the process restarts.
type MemoryStorage struct {
	mu     sync.RWMutex
	states map[int64]*UserState
}

// NewMemoryStorage creates an empty in-memory Storage implementation.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		states: make(map[int64]*UserState),
	}
}

// GetState returns the stored user state or ErrStateNotFound when absent.
func (s *MemoryStorage) GetState(_ context.Context, userID int64) (*UserState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.states[userID]
	if !ok {
		return nil, ErrStateNotFound
	}

	clone := *stored
	if stored.Draft != nil {
		draft := *stored.Draft
		clone.Draft = &draft
	}

	return &clone, nil
}

// SetState saves the provided user state.
func (s *MemoryStorage) SetState(_ context.Context, userID int64, state *UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.UpdatedAt = time.Now().UTC()

	clone := *state
	if state.Draft != nil {
		draft := *state.Draft
		clone.Draft = &draft
	}
	s.states[userID] = &clone

	return nil
}

// ClearState removes the stored state for the given user.
func (s *MemoryStorage) ClearState(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, userID)

	return nil
}
