package core

import (
	"slices"
	"time"
)

// Role is the name of a role an Actor can hold (e.g. "admin", "red-team").
// Permissions attach to roles, never to individual actors.
type Role string

// Capability is a named permission attached to a role, e.g. "view-audit"
// or "manage-policies".
type Capability string

const (
	// CapViewAudit is required to read audit ledger entries.
	CapViewAudit Capability = "view-audit"

	// CapManagePolicies is required to register or overwrite role and
	// action policies at runtime.
	CapManagePolicies Capability = "manage-policies"

	// CapResolveApprovals is required to approve or deny a pending approval.
	CapResolveApprovals Capability = "resolve-approvals"
)

// RiskClass is the coarse risk classification assigned per action type,
// independent of the per-request computed score.
type RiskClass string

const (
	RiskLow      RiskClass = "low"
	RiskMedium   RiskClass = "medium"
	RiskHigh     RiskClass = "high"
	RiskCritical RiskClass = "critical"
)

// Valid reports whether the class is one of the four known classifications.
func (c RiskClass) Valid() bool {
	switch c {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// BaseWeight is the classification's contribution to the risk score
// before the 40% share is applied.
func (c RiskClass) BaseWeight() float64 {
	switch c {
	case RiskLow:
		return 0.1
	case RiskMedium:
		return 0.4
	case RiskHigh:
		return 0.7
	case RiskCritical:
		return 0.95
	}
	return 0.95 // unknown classes are treated as critical
}

// ApprovalThreshold is the score at or above which an action of this
// class escalates to human review even without an explicit
// requires-approval flag.
func (c RiskClass) ApprovalThreshold() float64 {
	switch c {
	case RiskLow:
		return 0.25
	case RiskMedium:
		return 0.5
	case RiskHigh:
		return 0.75
	case RiskCritical:
		return 1.0
	}
	return 0.0
}

// Actor is the identity on whose behalf actions are requested.
// Actors are created on first authentication and never hard-deleted,
// so audit entries can keep referencing a stable actor ID.
type Actor struct {
	// ID is the stable unique identifier of the actor.
	ID string `yaml:"id" json:"id"`

	// DisplayName is a human-readable name for logs and reviews.
	DisplayName string `yaml:"display_name" json:"display_name"`

	// Role is the single role assigned to this actor.
	Role Role `yaml:"role" json:"role"`

	// Active indicates whether the actor may request actions at all.
	// Deactivation is the only mutation the gateway performs on an actor.
	Active bool `yaml:"active" json:"active"`

	// Sessions holds the identifiers of currently live sessions.
	Sessions []string `yaml:"sessions,omitempty" json:"sessions,omitempty"`
}

// ActionPolicy describes how a single named action is governed.
type ActionPolicy struct {
	// Action is the unique action/tool name this policy applies to.
	Action string `yaml:"action" json:"action"`

	// AllowedRoles lists the roles permitted to request this action.
	AllowedRoles []Role `yaml:"allowed_roles" json:"allowed_roles"`

	// Classification is the coarse risk class of the action.
	Classification RiskClass `yaml:"classification" json:"classification"`

	// RequiresApproval forces escalation to human review regardless of
	// the computed risk score.
	RequiresApproval bool `yaml:"requires_approval" json:"requires_approval"`

	// MaxConcurrent caps in-flight executions per actor. Zero means no cap.
	MaxConcurrent int `yaml:"max_concurrent" json:"max_concurrent"`

	// MaxPerWindow caps requests per actor within Window. Zero means no cap.
	MaxPerWindow int `yaml:"max_per_window" json:"max_per_window"`

	// Window is the rolling window for MaxPerWindow. Zero falls back to
	// the gateway default (24h).
	Window time.Duration `yaml:"window,omitempty" json:"window,omitempty"`
}

// RoleAllowed reports whether the given role may request this action.
func (p ActionPolicy) RoleAllowed(role Role) bool {
	return slices.Contains(p.AllowedRoles, role)
}

// RiskContext carries the per-request signals the risk evaluator folds
// into a score. It is constructed fresh per request and never persisted;
// only the derived score is.
type RiskContext struct {
	// Action is the requested action name.
	Action string `json:"action"`

	// Target is the optional object of the action (path, host, URL).
	Target string `json:"target,omitempty"`

	// Actor is the requesting identity.
	Actor Actor `json:"actor"`

	// HistoricalAvg is the actor's rolling historical risk average,
	// if one is known. Absence means no adjustment.
	HistoricalAvg *float64 `json:"historical_avg,omitempty"`

	// HourOfDay is the local hour (0-23) the request was made, if known.
	HourOfDay *int `json:"hour_of_day,omitempty"`

	// Scheduled marks requests originating from a pre-approved schedule
	// rather than an ad hoc human prompt.
	Scheduled bool `json:"scheduled,omitempty"`

	// Metadata carries free-form context; it is audited but never scored.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// EscalationLevel is the tier of human reviewer an escalated request is
// routed to.
type EscalationLevel string

const (
	EscalationNone     EscalationLevel = "auto"
	EscalationManager  EscalationLevel = "manager"
	EscalationAdmin    EscalationLevel = "admin"
	EscalationSecurity EscalationLevel = "security"
)

// Outcome is the decision outcome recorded in the audit ledger.
type Outcome string

const (
	OutcomeApproved  Outcome = "approved"
	OutcomeDenied    Outcome = "denied"
	OutcomeEscalated Outcome = "escalated"

	// Execution outcomes, recorded by the second audit entry after an
	// approved action actually ran.
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Decision is the immutable result of a single gate evaluation.
type Decision struct {
	// Approved reports whether the action may run now, without waiting
	// for a human.
	Approved bool `json:"approved"`

	// RiskScore is the normalized computed risk in [0,1].
	RiskScore float64 `json:"risk_score"`

	// Reason explains the decision in one line.
	Reason string `json:"reason"`

	// RequiresHumanApproval indicates the request was escalated and a
	// PendingApproval record was created.
	RequiresHumanApproval bool `json:"requires_human_approval"`

	// Escalation names the reviewer tier for escalated requests.
	Escalation EscalationLevel `json:"escalation_level"`
}

// Outcome maps the decision onto the audit outcome vocabulary.
func (d Decision) Outcome() Outcome {
	switch {
	case d.RequiresHumanApproval:
		return OutcomeEscalated
	case d.Approved:
		return OutcomeApproved
	default:
		return OutcomeDenied
	}
}
