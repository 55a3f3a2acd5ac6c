package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/internal/gate"
	"github.com/Senpai-Sama7/Astro-sub000/internal/policy"
	"github.com/Senpai-Sama7/Astro-sub000/internal/store"
)

// AuditFailureMode decides what happens when the ledger is unreachable
// during an append.
type AuditFailureMode string

const (
	// FailClosed denies the request rather than let an unaudited action
	// proceed. This is the default.
	FailClosed AuditFailureMode = "closed"

	// FailOpen lets low/medium actions proceed with the entry queued for
	// at-least-once retry. High/critical actions still fail closed.
	// Never a silent default; it must be explicit configuration.
	FailOpen AuditFailureMode = "open"
)

// Options tune gateway behavior.
type Options struct {
	// ApprovalTTL is how long a pending approval may stay unresolved
	// before the sweep auto-denies it. Zero means 24h.
	ApprovalTTL time.Duration

	// AuditFailure selects the persistence-failure policy.
	AuditFailure AuditFailureMode
}

// Gateway is the single entry point external callers use. It orchestrates
// policy lookup, risk scoring, approval tracking and the audit ledger in
// a fixed order. One gateway is constructed per process and passed by
// reference; there is no hidden global instance.
type Gateway struct {
	policies  *policy.Store
	gate      *gate.Gate
	ledger    core.Ledger
	approvals core.ApprovalStore
	actors    *store.ActorDirectory

	approvalTTL  time.Duration
	auditFailure AuditFailureMode

	retryMu    sync.Mutex
	retryQueue []core.AuditEntry
}

func NewGateway(
	policies *policy.Store,
	g *gate.Gate,
	ledger core.Ledger,
	approvals core.ApprovalStore,
	actors *store.ActorDirectory,
	opts Options,
) *Gateway {
	if opts.ApprovalTTL <= 0 {
		opts.ApprovalTTL = core.DefaultApprovalTTL
	}
	if opts.AuditFailure == "" {
		opts.AuditFailure = FailClosed
	}
	return &Gateway{
		policies:     policies,
		gate:         g,
		ledger:       ledger,
		approvals:    approvals,
		actors:       actors,
		approvalTTL:  opts.ApprovalTTL,
		auditFailure: opts.AuditFailure,
	}
}

// Evaluate decides whether the actor may perform the action and appends
// exactly one audit entry, regardless of which branch the decision took.
// It returns promptly even for escalations; waiting for the human is the
// caller's separate ResolveApproval call.
func (s *Gateway) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	logger := log.Ctx(ctx)
	correlationID, _ := ctx.Value("correlation_id").(string)

	actor := s.resolveActor(req.Actor)

	rc := core.RiskContext{
		Action:        req.Action,
		Target:        req.Target,
		Actor:         actor,
		HistoricalAvg: req.HistoricalAvg,
		HourOfDay:     req.HourOfDay,
		Scheduled:     req.Scheduled,
		Metadata:      req.Metadata,
	}

	decision, approval, decideErr := s.gate.Decide(ctx, correlationID, actor, req.Action, rc)
	if decideErr != nil {
		logger.Error().Err(decideErr).Msg("gate could not track escalation, failing closed")
	}

	entry := core.AuditEntry{
		ActorID:   actor.ID,
		Role:      actor.Role,
		Action:    req.Action,
		Resource:  req.Target,
		Outcome:   decision.Outcome(),
		RiskScore: decision.RiskScore,
		Metadata:  auditMetadata(correlationID, approval, req.Metadata),
	}

	signed, appendErr := s.ledger.Append(ctx, entry)
	if appendErr != nil {
		return s.handleAppendFailure(ctx, actor, req, decision, approval, entry, appendErr)
	}

	if decideErr != nil {
		return nil, httpError(http.StatusServiceUnavailable, decideErr)
	}

	resp := &EvaluateResponse{Decision: decision, Approval: approval, AuditID: signed.ID}
	logger.Debug().
		Str("actor", actor.ID).
		Str("action", req.Action).
		Str("outcome", string(decision.Outcome())).
		Float64("risk", decision.RiskScore).
		Msg("evaluated action request")
	return resp, nil
}

// handleAppendFailure applies the persistence-failure policy: fail open
// is honored only when explicitly configured and only for low/medium
// actions; everything else denies rather than run unaudited.
func (s *Gateway) handleAppendFailure(ctx context.Context, actor core.Actor, req EvaluateRequest, decision core.Decision, approval *core.PendingApproval, entry core.AuditEntry, appendErr error) (*EvaluateResponse, error) {
	logger := log.Ctx(ctx)

	class := core.RiskCritical // unknown actions stay strict
	if pol, err := s.policies.ActionPolicy(req.Action); err == nil {
		class = pol.Classification
	}

	if s.auditFailure == FailOpen && (class == core.RiskLow || class == core.RiskMedium) {
		s.retryMu.Lock()
		s.retryQueue = append(s.retryQueue, entry)
		s.retryMu.Unlock()

		logger.Warn().Err(appendErr).
			Str("action", req.Action).
			Msg("audit ledger unreachable, proceeding fail-open with deferred audit")
		return &EvaluateResponse{Decision: decision, Approval: approval, AuditDeferred: true}, nil
	}

	// a pending approval for an unaudited decision must not stay
	// resolvable; deny it through the store so a later reviewer gets the
	// conflict error instead of authorizing a phantom request
	if approval != nil {
		if _, err := s.approvals.Resolve(ctx, approval.ID, core.StateDenied, "audit-unavailable"); err != nil && !errors.Is(err, core.ErrAlreadyResolved) {
			logger.Error().Err(err).Str("approval", approval.ID).Msg("failed to deny orphaned approval")
		}
	}

	// the action must not run without its audit trail
	if decision.Approved || decision.RequiresHumanApproval {
		s.gate.Limiter().Release(actor.ID, req.Action)
	}
	logger.Error().Err(appendErr).
		Str("action", req.Action).
		Msg("audit ledger unreachable, failing closed")
	return nil, httpError(http.StatusServiceUnavailable,
		fmt.Errorf("%w: %v", core.ErrLedgerUnavailable, appendErr))
}

// RecordOutcome appends the second, independent audit entry describing
// what actually happened when the approved action executed, and frees
// the actor's concurrency slot.
func (s *Gateway) RecordOutcome(ctx context.Context, req OutcomeRequest) (*core.AuditEntry, error) {
	outcome := core.OutcomeFailure
	if req.Success {
		outcome = core.OutcomeSuccess
	}

	correlationID, _ := ctx.Value("correlation_id").(string)
	metadata := map[string]any{"stage": "execution"}
	if correlationID != "" {
		metadata["correlation_id"] = correlationID
	}
	if req.Detail != "" {
		metadata["detail"] = req.Detail
	}

	entry, err := s.ledger.Append(ctx, core.AuditEntry{
		ActorID:  req.ActorID,
		Role:     req.Role,
		Action:   req.Action,
		Resource: req.Resource,
		Outcome:  outcome,
		Metadata: metadata,
	})
	if err != nil {
		return nil, httpError(http.StatusServiceUnavailable,
			fmt.Errorf("%w: %v", core.ErrLedgerUnavailable, err))
	}

	s.gate.Limiter().Release(req.ActorID, req.Action)
	return &entry, nil
}

// ResolveApproval commits a human sign-off. A second attempt against the
// same approval returns 409 with the stored record untouched, so
// transport-level retries stay idempotent.
func (s *Gateway) ResolveApproval(ctx context.Context, req ResolveRequest) (*core.PendingApproval, error) {
	if !s.policies.HasCapability(req.ResolverRole, core.CapResolveApprovals) {
		return nil, httpError(http.StatusForbidden,
			fmt.Errorf("role '%s' lacks the %s capability", req.ResolverRole, core.CapResolveApprovals))
	}

	state := core.StateDenied
	if req.Approve {
		state = core.StateApproved
	}

	approval, err := s.approvals.Resolve(ctx, req.ApprovalID, state, req.ResolvedBy)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrAlreadyResolved):
			return nil, httpError(http.StatusConflict, err)
		case errors.Is(err, core.ErrApprovalNotFound):
			return nil, httpError(http.StatusNotFound, err)
		}
		return nil, httpError(http.StatusInternalServerError, err)
	}

	outcome := core.OutcomeDenied
	if req.Approve {
		outcome = core.OutcomeApproved
	}
	s.auditApproval(ctx, approval, outcome, map[string]any{
		"stage":       "approval",
		"approval_id": approval.ID,
		"resolved_by": req.ResolvedBy,
	})

	if !req.Approve {
		s.gate.Limiter().Release(approval.ActorID, approval.Action)
	}
	return &approval, nil
}

// ExpireApprovals auto-denies unresolved approvals older than the TTL.
// Each auto-denial is itself an audited event. A human resolution racing
// the sweep is fine: whichever transition commits first wins and the
// loser sees ErrAlreadyResolved.
func (s *Gateway) ExpireApprovals(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.approvals.Expired(ctx, now, s.approvalTTL)
	if err != nil {
		return 0, err
	}

	denied := 0
	for _, approval := range expired {
		resolved, err := s.approvals.Resolve(ctx, approval.ID, core.StateDenied, "timeout")
		if err != nil {
			if errors.Is(err, core.ErrAlreadyResolved) {
				continue // a human got there first
			}
			return denied, err
		}
		denied++

		s.auditApproval(ctx, resolved, core.OutcomeDenied, map[string]any{
			"stage":       "approval",
			"approval_id": resolved.ID,
			"resolved_by": "timeout",
			"reason":      fmt.Sprintf("unresolved after %s", s.approvalTTL),
		})
		s.gate.Limiter().Release(resolved.ActorID, resolved.Action)
	}
	return denied, nil
}

// FlushAuditRetries re-appends entries deferred by fail-open evaluates.
// At-least-once: a retried entry gets a fresh id, sequence and signature.
func (s *Gateway) FlushAuditRetries(ctx context.Context) (int, error) {
	s.retryMu.Lock()
	queued := s.retryQueue
	s.retryQueue = nil
	s.retryMu.Unlock()

	for i, entry := range queued {
		if _, err := s.ledger.Append(ctx, entry); err != nil {
			s.retryMu.Lock()
			s.retryQueue = append(queued[i:], s.retryQueue...)
			s.retryMu.Unlock()
			return i, fmt.Errorf("%w: %v", core.ErrLedgerUnavailable, err)
		}
	}
	return len(queued), nil
}

// QueryAudit returns ledger entries visible to the requesting role.
func (s *Gateway) QueryAudit(ctx context.Context, role core.Role, filter core.Filter) ([]core.AuditEntry, error) {
	return s.ledger.Query(ctx, role, filter)
}

// VerifyLedger re-checks every stored signature.
func (s *Gateway) VerifyLedger(ctx context.Context) (core.IntegrityReport, error) {
	return s.ledger.VerifyIntegrity(ctx)
}

// Explain dry-runs a decision without consuming limits or creating
// approvals.
func (s *Gateway) Explain(ctx context.Context, req ExplainRequest) *ExplainResponse {
	correlationID, _ := ctx.Value("correlation_id").(string)
	actor := s.resolveActor(req.Actor)

	trace := s.gate.Explain(ctx, actor, req.Action, core.RiskContext{
		Action:        req.Action,
		Target:        req.Target,
		Actor:         actor,
		HistoricalAvg: req.HistoricalAvg,
		HourOfDay:     req.HourOfDay,
		Scheduled:     req.Scheduled,
		Metadata:      req.Metadata,
	})
	trace.CorrelationID = correlationID
	return &ExplainResponse{Trace: trace}
}

// ListApprovals returns approvals in the given state (empty means all).
func (s *Gateway) ListApprovals(ctx context.Context, state core.ApprovalState) ([]core.PendingApproval, error) {
	return s.approvals.List(ctx, state)
}

// RegisterRolePolicy hot-updates a role's capability set. Requires the
// manage-policies capability.
func (s *Gateway) RegisterRolePolicy(requestedBy core.Role, role core.Role, capabilities []core.Capability) error {
	if !s.policies.HasCapability(requestedBy, core.CapManagePolicies) {
		return httpError(http.StatusForbidden,
			fmt.Errorf("role '%s' lacks the %s capability", requestedBy, core.CapManagePolicies))
	}
	s.policies.RegisterRolePolicy(role, capabilities)
	return nil
}

// RegisterActionPolicy hot-updates an action policy. Requires the
// manage-policies capability.
func (s *Gateway) RegisterActionPolicy(requestedBy core.Role, pol core.ActionPolicy) error {
	if !s.policies.HasCapability(requestedBy, core.CapManagePolicies) {
		return httpError(http.StatusForbidden,
			fmt.Errorf("role '%s' lacks the %s capability", requestedBy, core.CapManagePolicies))
	}
	if err := s.policies.RegisterActionPolicy(pol); err != nil {
		return httpError(http.StatusBadRequest, err)
	}
	return nil
}

// Policies exposes the policy store for read-only listing handlers.
func (s *Gateway) Policies() *policy.Store {
	return s.policies
}

// Actors exposes the actor directory for the admin surface.
func (s *Gateway) Actors() *store.ActorDirectory {
	return s.actors
}

// SweepLimits drops rate limit windows with no usage and no in-flight
// slots, returning how many were removed.
func (s *Gateway) SweepLimits(now time.Time) int {
	return s.gate.Limiter().Sweep(now)
}

// Notifications exposes the ledger's append notification channel, or
// nil when the ledger implementation does not publish one.
func (s *Gateway) Notifications() <-chan string {
	type notifying interface {
		Notifications() <-chan string
	}
	if n, ok := s.ledger.(notifying); ok {
		return n.Notifications()
	}
	return nil
}

// resolveActor prefers the directory record for previously seen actors
// (the directory is authoritative for role and the active flag) and
// registers first-time actors.
func (s *Gateway) resolveActor(requested core.Actor) core.Actor {
	if known, ok := s.actors.Get(requested.ID); ok {
		return known
	}
	if requested.ID != "" {
		s.actors.Put(requested)
	}
	return requested
}

func (s *Gateway) auditApproval(ctx context.Context, approval core.PendingApproval, outcome core.Outcome, metadata map[string]any) {
	_, err := s.ledger.Append(ctx, core.AuditEntry{
		ActorID:   approval.ActorID,
		Role:      "", // the acting role here is the reviewer's, kept in metadata
		Action:    approval.Action,
		Resource:  approval.Resource,
		Outcome:   outcome,
		RiskScore: approval.RiskScore,
		Metadata:  metadata,
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("approval", approval.ID).
			Msg("failed to audit approval resolution")
	}
}

func auditMetadata(correlationID string, approval *core.PendingApproval, reqMetadata map[string]any) map[string]any {
	metadata := map[string]any{"stage": "decision"}
	if correlationID != "" {
		metadata["correlation_id"] = correlationID
	}
	if approval != nil {
		metadata["approval_id"] = approval.ID
		metadata["escalation_level"] = string(approval.Escalation)
	}
	for k, v := range reqMetadata {
		if _, reserved := metadata[k]; !reserved {
			metadata[k] = v
		}
	}
	return metadata
}
