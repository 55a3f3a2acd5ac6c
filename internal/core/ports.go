package core

import (
	"context"
	"time"
)

// CapabilityChecker answers role capability lookups. Implemented by the
// policy store; consumed by the ledger to gate audit visibility.
type CapabilityChecker interface {
	HasCapability(role Role, capability Capability) bool
}

// Ledger is the append-only, signed audit record.
// Implementations: in-memory ring with file or SQLite archive overflow.
type Ledger interface {
	// Append assigns ID, sequence and timestamp, signs the entry and
	// stores it. Two concurrent appends never interleave.
	Append(ctx context.Context, entry AuditEntry) (AuditEntry, error)

	// Query returns entries visible to the requesting role. A role
	// without the view-audit capability gets an empty result, not an
	// error. Filtering never mutates the store.
	Query(ctx context.Context, role Role, filter Filter) ([]AuditEntry, error)

	// VerifyIntegrity recomputes every stored signature and reports
	// mismatches without correcting them.
	VerifyIntegrity(ctx context.Context) (IntegrityReport, error)

	Close() error
}

// ApprovalStore owns PendingApproval records and their single terminal
// transition. Implementations: in-memory store.
type ApprovalStore interface {
	Create(ctx context.Context, approval PendingApproval) (PendingApproval, error)

	Get(ctx context.Context, id string) (PendingApproval, error)

	// Resolve commits the one allowed transition out of CREATED. A second
	// attempt returns ErrAlreadyResolved and leaves the record unchanged.
	Resolve(ctx context.Context, id string, state ApprovalState, resolvedBy string) (PendingApproval, error)

	// List returns approvals in the given state; empty state means all.
	List(ctx context.Context, state ApprovalState) ([]PendingApproval, error)

	// Expired returns unresolved approvals older than ttl at now.
	Expired(ctx context.Context, now time.Time, ttl time.Duration) ([]PendingApproval, error)
}

// ArchiveStore is the durable overflow target for ledger entries evicted
// from the in-memory ring. Entries keep their signatures, so integrity
// verification spans the memory/archive boundary.
type ArchiveStore interface {
	Append(ctx context.Context, entries []AuditEntry) error
	All(ctx context.Context) ([]AuditEntry, error)
	Close() error
}
