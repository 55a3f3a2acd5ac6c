package core

import "time"

// ApprovalState is the lifecycle state of a PendingApproval.
// A record transitions out of StateCreated exactly once.
type ApprovalState string

const (
	StateCreated  ApprovalState = "CREATED"
	StateApproved ApprovalState = "APPROVED"
	StateDenied   ApprovalState = "DENIED"
)

// Terminal reports whether the state permits no further transition.
func (s ApprovalState) Terminal() bool {
	return s == StateApproved || s == StateDenied
}

// DefaultApprovalTTL is how long a PendingApproval may stay unresolved
// before the background sweep auto-denies it.
const DefaultApprovalTTL = 24 * time.Hour

// PendingApproval tracks a single escalated request awaiting human
// sign-off. It is created only when a Decision escalates.
type PendingApproval struct {
	// ID is the unique approval identifier handed to reviewers.
	ID string `json:"id"`

	// CorrelationID references the originating evaluate request, tying
	// the approval back to its audit entry.
	CorrelationID string `json:"correlation_id"`

	// ActorID, Action and Resource describe what is being signed off.
	ActorID  string `json:"actor_id"`
	Action   string `json:"action"`
	Resource string `json:"resource,omitempty"`

	// RiskScore and Escalation are copied from the originating Decision.
	RiskScore  float64         `json:"risk_score"`
	Escalation EscalationLevel `json:"escalation_level"`

	// State is CREATED until exactly one terminal transition commits.
	State ApprovalState `json:"state"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	// ResolvedBy names the human reviewer, or "timeout" for the
	// automatic 24h denial.
	ResolvedBy string `json:"resolved_by,omitempty"`
}

// Expired reports whether an unresolved approval has outlived ttl at now.
func (p PendingApproval) Expired(now time.Time, ttl time.Duration) bool {
	if p.State.Terminal() {
		return false
	}
	if ttl <= 0 {
		ttl = DefaultApprovalTTL
	}
	return now.After(p.CreatedAt.Add(ttl))
}
