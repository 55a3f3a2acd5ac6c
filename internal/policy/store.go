package policy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

// Store maps roles to capability sets and action names to their
// governing ActionPolicy. Registration is last-write-wins; overwrites
// are logged so an operator can judge whether they were intentional.
type Store struct {
	mu      sync.RWMutex
	roles   map[core.Role]map[core.Capability]struct{}
	actions map[string]core.ActionPolicy
}

func NewStore() *Store {
	return &Store{
		roles:   make(map[core.Role]map[core.Capability]struct{}),
		actions: make(map[string]core.ActionPolicy),
	}
}

// RegisterRolePolicy replaces the capability set of a role.
func (s *Store) RegisterRolePolicy(role core.Role, capabilities []core.Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.roles[role]; exists {
		log.Warn().Str("role", string(role)).Msg("overwriting existing role policy")
	}

	caps := make(map[core.Capability]struct{}, len(capabilities))
	for _, c := range capabilities {
		caps[c] = struct{}{}
	}
	s.roles[role] = caps
}

// RegisterActionPolicy registers or replaces the policy for an action.
func (s *Store) RegisterActionPolicy(pol core.ActionPolicy) error {
	if pol.Action == "" {
		return fmt.Errorf("action policy missing action name")
	}
	if !pol.Classification.Valid() {
		return fmt.Errorf("action policy '%s' has unknown classification '%s'", pol.Action, pol.Classification)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.actions[pol.Action]; exists {
		log.Warn().Str("action", pol.Action).Msg("overwriting existing action policy")
	}
	for _, role := range pol.AllowedRoles {
		if _, known := s.roles[role]; !known {
			log.Warn().
				Str("action", pol.Action).
				Str("role", string(role)).
				Msg("action policy references unregistered role")
		}
	}
	s.actions[pol.Action] = pol
	return nil
}

// HasCapability reports whether the role holds the named capability.
func (s *Store) HasCapability(role core.Role, capability core.Capability) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	caps, ok := s.roles[role]
	if !ok {
		return false
	}
	_, ok = caps[capability]
	return ok
}

// ActionPolicy returns the policy for the named action.
// An unregistered action yields core.ErrUnknownAction; callers must
// treat that as an unconditional deny, never as "unrestricted".
func (s *Store) ActionPolicy(action string) (core.ActionPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pol, ok := s.actions[action]
	if !ok {
		return core.ActionPolicy{}, fmt.Errorf("%w: %s", core.ErrUnknownAction, action)
	}
	return pol, nil
}

// Actions lists all registered action policies, sorted by name.
func (s *Store) Actions() []core.ActionPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.ActionPolicy, 0, len(s.actions))
	for _, pol := range s.actions {
		out = append(out, pol)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}

// Capabilities lists the capability set of a role, sorted.
func (s *Store) Capabilities(role core.Role) []core.Capability {
	s.mu.RLock()
	defer s.mu.RUnlock()

	caps, ok := s.roles[role]
	if !ok {
		return nil
	}
	out := make([]core.Capability, 0, len(caps))
	for c := range caps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
