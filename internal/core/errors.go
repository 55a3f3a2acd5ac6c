package core

import "errors"

var (
	// ErrActorInactive is an authentication failure: the actor exists
	// but is deactivated. It short-circuits before any risk computation.
	ErrActorInactive = errors.New("actor inactive")

	// ErrUnknownAction marks a request for an action with no registered
	// policy. Callers must treat this as a deny, never as unrestricted.
	ErrUnknownAction = errors.New("unknown action")

	// ErrRoleDenied is an authorization failure: the actor's role is not
	// in the action's allowed roles. It is never escalated to a human.
	ErrRoleDenied = errors.New("role not permitted for action")

	// ErrRateLimited marks a request rejected by the per-actor window or
	// concurrency counters. The caller owns backoff and retry.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrApprovalNotFound is returned for an unknown approval ID.
	ErrApprovalNotFound = errors.New("pending approval not found")

	// ErrAlreadyResolved is returned when a resolution is attempted
	// against a terminal PendingApproval. The stored state is unchanged,
	// which makes transport-level retries idempotent.
	ErrAlreadyResolved = errors.New("approval already resolved")

	// ErrLedgerUnavailable marks an audit append that could not be
	// persisted. Whether the request then fails closed or open is
	// configuration, decided by the gateway.
	ErrLedgerUnavailable = errors.New("audit ledger unavailable")
)
