package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

var _ core.ApprovalStore = (*InMemoryApprovalStore)(nil)

// InMemoryApprovalStore keeps PendingApproval records in memory.
// Resolve holds the lock across the terminal-state check and the write,
// so a human resolution and the timeout sweep can race and exactly one
// of them commits.
type InMemoryApprovalStore struct {
	mu        sync.RWMutex
	approvals map[string]core.PendingApproval
}

func NewInMemoryApprovalStore() *InMemoryApprovalStore {
	return &InMemoryApprovalStore{
		approvals: make(map[string]core.PendingApproval),
	}
}

func (s *InMemoryApprovalStore) Create(_ context.Context, approval core.PendingApproval) (core.PendingApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if approval.ID == "" {
		approval.ID = xid.New().String()
	}
	if approval.CreatedAt.IsZero() {
		approval.CreatedAt = time.Now().UTC()
	}
	approval.State = core.StateCreated

	s.approvals[approval.ID] = approval
	return approval, nil
}

func (s *InMemoryApprovalStore) Get(_ context.Context, id string) (core.PendingApproval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	approval, ok := s.approvals[id]
	if !ok {
		return core.PendingApproval{}, fmt.Errorf("%w: %s", core.ErrApprovalNotFound, id)
	}
	return approval, nil
}

func (s *InMemoryApprovalStore) Resolve(_ context.Context, id string, state core.ApprovalState, resolvedBy string) (core.PendingApproval, error) {
	if !state.Terminal() {
		return core.PendingApproval{}, fmt.Errorf("cannot resolve approval '%s' to non-terminal state '%s'", id, state)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	approval, ok := s.approvals[id]
	if !ok {
		return core.PendingApproval{}, fmt.Errorf("%w: %s", core.ErrApprovalNotFound, id)
	}
	if approval.State.Terminal() {
		return approval, fmt.Errorf("%w: %s is %s", core.ErrAlreadyResolved, id, approval.State)
	}

	now := time.Now().UTC()
	approval.State = state
	approval.ResolvedAt = &now
	approval.ResolvedBy = resolvedBy
	s.approvals[id] = approval
	return approval, nil
}

func (s *InMemoryApprovalStore) List(_ context.Context, state core.ApprovalState) ([]core.PendingApproval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.PendingApproval, 0, len(s.approvals))
	for _, approval := range s.approvals {
		if state != "" && approval.State != state {
			continue
		}
		out = append(out, approval)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryApprovalStore) Expired(_ context.Context, now time.Time, ttl time.Duration) ([]core.PendingApproval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.PendingApproval
	for _, approval := range s.approvals {
		if approval.Expired(now, ttl) {
			out = append(out, approval)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
