package service

import (
	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/internal/gate"
)

// EvaluateRequest asks the gateway whether an actor may perform an
// action right now.
type EvaluateRequest struct {
	// Actor is the requesting identity. Previously seen actors are
	// resolved against the directory, which is authoritative for the
	// active flag and role.
	Actor core.Actor `json:"actor"`

	// Action is the requested action/tool name.
	Action string `json:"action"`

	// Target is the optional object of the action.
	Target string `json:"target,omitempty"`

	// HistoricalAvg, HourOfDay and Scheduled are optional risk signals;
	// absence means neutral.
	HistoricalAvg *float64 `json:"historical_avg,omitempty"`
	HourOfDay     *int     `json:"hour_of_day,omitempty"`
	Scheduled     bool     `json:"scheduled,omitempty"`

	// Metadata is audited verbatim but never scored.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// EvaluateResponse carries the decision, the pending approval when the
// request escalated, and the ID of the audit entry recording it all.
type EvaluateResponse struct {
	Decision core.Decision         `json:"decision"`
	Approval *core.PendingApproval `json:"approval,omitempty"`
	AuditID  string                `json:"audit_id,omitempty"`

	// AuditDeferred is set when the ledger was unreachable and the entry
	// was queued for best-effort retry (fail-open mode, low/medium only).
	AuditDeferred bool `json:"audit_deferred,omitempty"`
}

// OutcomeRequest reports what actually happened after an approved
// action executed.
type OutcomeRequest struct {
	ActorID  string    `json:"actor_id"`
	Role     core.Role `json:"role"`
	Action   string    `json:"action"`
	Resource string    `json:"resource,omitempty"`

	// Success distinguishes a completed execution from a failed one.
	Success bool   `json:"success"`
	Detail  string `json:"detail,omitempty"`
}

// ResolveRequest is a human sign-off on a pending approval.
type ResolveRequest struct {
	ApprovalID string `json:"approval_id"`

	// Approve accepts the escalated request; false denies it.
	Approve bool `json:"approve"`

	// ResolvedBy names the reviewer, ResolverRole their role (checked
	// against the resolve-approvals capability).
	ResolvedBy   string    `json:"resolved_by"`
	ResolverRole core.Role `json:"resolver_role"`
}

// ExplainRequest dry-runs a decision without consuming limits or
// creating approvals.
type ExplainRequest = EvaluateRequest

// ExplainResponse is the gate's check trace plus the risk factor
// breakdown.
type ExplainResponse struct {
	Trace gate.Trace `json:"trace"`
}
