package core

import "time"

// AuditEntry is one signed, append-only record in the ledger. Once
// written it is never mutated or deleted; tampering is detected, not
// prevented. Total ordering is by Seq, not wall-clock time.
type AuditEntry struct {
	// ID is the unique entry identifier assigned on append.
	ID string `json:"id"`

	// Seq is the append sequence number. It defines the total order of
	// the ledger regardless of clock skew.
	Seq uint64 `json:"seq"`

	// Time is the append timestamp (UTC).
	Time time.Time `json:"time"`

	// ActorID and Role identify who requested the action and the role
	// held at the time of the action.
	ActorID string `json:"actor_id"`
	Role    Role   `json:"role"`

	// Action and Resource describe what was requested.
	Action   string `json:"action"`
	Resource string `json:"resource,omitempty"`

	// Outcome is the decision or execution outcome recorded.
	Outcome Outcome `json:"outcome"`

	// RiskScore is the computed score at decision time.
	RiskScore float64 `json:"risk_score"`

	// Metadata carries free-form detail. It is stored but not part of
	// the signed canonical payload.
	Metadata map[string]any `json:"metadata,omitempty"`

	// KeyID names the signing key that produced Signature, so retired
	// keys keep old entries verifiable after rotation.
	KeyID string `json:"key_id"`

	// Signature is the hex HMAC-SHA256 over the canonical serialization
	// of the fields above (see ledger.CanonicalPayload).
	Signature string `json:"signature"`
}

// Filter narrows an audit query. Zero values match everything.
type Filter struct {
	ActorID  string    `json:"actor_id,omitempty"`
	Action   string    `json:"action,omitempty"`
	Resource string    `json:"resource,omitempty"`
	From     time.Time `json:"from,omitempty"`
	To       time.Time `json:"to,omitempty"`
	Limit    int       `json:"limit,omitempty"`
}

// Matches reports whether the entry passes the filter.
func (f Filter) Matches(e AuditEntry) bool {
	if f.ActorID != "" && e.ActorID != f.ActorID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.Resource != "" && e.Resource != f.Resource {
		return false
	}
	if !f.From.IsZero() && e.Time.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Time.After(f.To) {
		return false
	}
	return true
}

// IntegrityReport is the result of re-verifying every stored entry.
// Mismatches are reported, never auto-corrected.
type IntegrityReport struct {
	Valid       bool     `json:"valid"`
	Checked     int      `json:"checked"`
	TamperedIDs []string `json:"tampered_ids"`
}
