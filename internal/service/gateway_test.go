package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/internal/gate"
	"github.com/Senpai-Sama7/Astro-sub000/internal/ledger"
	"github.com/Senpai-Sama7/Astro-sub000/internal/policy"
	"github.com/Senpai-Sama7/Astro-sub000/internal/risk"
	"github.com/Senpai-Sama7/Astro-sub000/internal/store"
)

// flakyLedger wraps a real ledger and can be toggled to reject appends,
// standing in for an unreachable archive backend.
type flakyLedger struct {
	inner   core.Ledger
	failing bool
}

func (f *flakyLedger) Append(ctx context.Context, entry core.AuditEntry) (core.AuditEntry, error) {
	if f.failing {
		return core.AuditEntry{}, fmt.Errorf("archive offline")
	}
	return f.inner.Append(ctx, entry)
}

func (f *flakyLedger) Query(ctx context.Context, role core.Role, filter core.Filter) ([]core.AuditEntry, error) {
	return f.inner.Query(ctx, role, filter)
}

func (f *flakyLedger) VerifyIntegrity(ctx context.Context) (core.IntegrityReport, error) {
	return f.inner.VerifyIntegrity(ctx)
}

func (f *flakyLedger) Close() error { return f.inner.Close() }

type fixture struct {
	gateway   *Gateway
	policies  *policy.Store
	approvals *store.InMemoryApprovalStore
	actors    *store.ActorDirectory
	ledger    *flakyLedger
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	policies := policy.NewStore()
	policies.RegisterRolePolicy("developer", nil)
	policies.RegisterRolePolicy("manager", []core.Capability{core.CapResolveApprovals, core.CapViewAudit})
	policies.RegisterRolePolicy("admin", []core.Capability{
		core.CapResolveApprovals, core.CapViewAudit, core.CapManagePolicies,
	})

	for _, pol := range []core.ActionPolicy{
		{
			Action:         "read_file",
			AllowedRoles:   []core.Role{"developer", "manager", "admin"},
			Classification: core.RiskLow,
		},
		{
			Action:         "deploy_service",
			AllowedRoles:   []core.Role{"developer"},
			Classification: core.RiskHigh,
			MaxConcurrent:  1,
		},
		{
			Action:           "exploit_tool",
			AllowedRoles:     []core.Role{"developer"},
			Classification:   core.RiskCritical,
			RequiresApproval: true,
			MaxConcurrent:    1,
		},
	} {
		if err := policies.RegisterActionPolicy(pol); err != nil {
			t.Fatalf("RegisterActionPolicy(%s): %v", pol.Action, err)
		}
	}

	signer, err := ledger.NewSigner(ledger.Key{ID: "k1", Secret: []byte("test-secret")})
	if err != nil {
		t.Fatalf("NewSigner(): %v", err)
	}
	inner, err := ledger.New(signer, policies, ledger.Options{})
	if err != nil {
		t.Fatalf("ledger.New(): %v", err)
	}
	flaky := &flakyLedger{inner: inner}

	approvals := store.NewInMemoryApprovalStore()
	actors := store.NewActorDirectory()
	g := gate.New(policies, risk.New(risk.DefaultWeights()), approvals, gate.NewLimiter(gate.DefaultWindow))

	return &fixture{
		gateway:   NewGateway(policies, g, flaky, approvals, actors, opts),
		policies:  policies,
		approvals: approvals,
		actors:    actors,
		ledger:    flaky,
	}
}

func developer(id string) core.Actor {
	return core.Actor{ID: id, DisplayName: id, Role: "developer", Active: true}
}

func (f *fixture) auditEntries(t *testing.T) []core.AuditEntry {
	t.Helper()
	entries, err := f.gateway.QueryAudit(context.Background(), "admin", core.Filter{})
	if err != nil {
		t.Fatalf("QueryAudit(): %v", err)
	}
	return entries
}

func TestEvaluateAuditsEveryBranch(t *testing.T) {
	tt := []struct {
		name        string
		setup       func(f *fixture)
		req         EvaluateRequest
		wantOutcome core.Outcome
		wantScore   float64
	}{
		{
			name:        "approved",
			req:         EvaluateRequest{Actor: developer("dev-1"), Action: "read_file", Target: "/tmp/a"},
			wantOutcome: core.OutcomeApproved,
			wantScore:   0.04,
		},
		{
			name:        "unknown action",
			req:         EvaluateRequest{Actor: developer("dev-1"), Action: "rm_rf"},
			wantOutcome: core.OutcomeDenied,
			wantScore:   0.9,
		},
		{
			name: "role denied",
			req: EvaluateRequest{
				Actor:  core.Actor{ID: "mgr-1", Role: "manager", Active: true},
				Action: "deploy_service",
			},
			wantOutcome: core.OutcomeDenied,
			wantScore:   0.8,
		},
		{
			name: "inactive actor",
			setup: func(f *fixture) {
				f.actors.Put(core.Actor{ID: "ghost", Role: "developer", Active: false})
			},
			req:         EvaluateRequest{Actor: core.Actor{ID: "ghost", Role: "developer", Active: true}, Action: "read_file"},
			wantOutcome: core.OutcomeDenied,
			wantScore:   1.0,
		},
		{
			name:        "escalated",
			req:         EvaluateRequest{Actor: developer("dev-1"), Action: "exploit_tool"},
			wantOutcome: core.OutcomeEscalated,
			wantScore:   0.38,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			if tc.setup != nil {
				tc.setup(f)
			}

			resp, err := f.gateway.Evaluate(context.Background(), tc.req)
			if err != nil {
				t.Fatalf("Evaluate(): %v", err)
			}

			entries := f.auditEntries(t)
			if len(entries) != 1 {
				t.Fatalf("audit entries = %d, want exactly 1", len(entries))
			}
			entry := entries[0]
			if entry.Outcome != tc.wantOutcome {
				t.Errorf("audited outcome = %s, want %s", entry.Outcome, tc.wantOutcome)
			}
			if diff := entry.RiskScore - tc.wantScore; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("audited risk = %v, want %v", entry.RiskScore, tc.wantScore)
			}
			if entry.ID != resp.AuditID {
				t.Errorf("response AuditID = %s, stored entry ID = %s", resp.AuditID, entry.ID)
			}
			if stage := entry.Metadata["stage"]; stage != "decision" {
				t.Errorf("metadata stage = %v, want decision", stage)
			}
		})
	}
}

func TestEvaluateEscalationCreatesApproval(t *testing.T) {
	f := newFixture(t, Options{})

	resp, err := f.gateway.Evaluate(context.Background(), EvaluateRequest{
		Actor: developer("dev-1"), Action: "exploit_tool", Target: "10.0.0.5",
	})
	if err != nil {
		t.Fatalf("Evaluate(): %v", err)
	}

	if resp.Decision.Approved {
		t.Error("Decision.Approved = true for an escalated request")
	}
	if !resp.Decision.RequiresHumanApproval {
		t.Error("Decision.RequiresHumanApproval = false")
	}
	if resp.Approval == nil {
		t.Fatal("Approval = nil for an escalated request")
	}
	if resp.Approval.State != core.StateCreated {
		t.Errorf("Approval.State = %s, want %s", resp.Approval.State, core.StateCreated)
	}
	if resp.Approval.Action != "exploit_tool" || resp.Approval.ActorID != "dev-1" {
		t.Errorf("approval references %s/%s", resp.Approval.ActorID, resp.Approval.Action)
	}

	pending, err := f.gateway.ListApprovals(context.Background(), core.StateCreated)
	if err != nil {
		t.Fatalf("ListApprovals(): %v", err)
	}
	if len(pending) != 1 || pending[0].ID != resp.Approval.ID {
		t.Errorf("pending approvals = %+v, want the one just created", pending)
	}
}

func TestRecordOutcomeReleasesConcurrencySlot(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	req := EvaluateRequest{Actor: developer("dev-1"), Action: "deploy_service"}

	first, err := f.gateway.Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("Evaluate() #1: %v", err)
	}
	if !first.Decision.Approved {
		t.Fatalf("first deployment not approved: %+v", first.Decision)
	}

	// the single concurrency slot is held until the outcome is reported
	second, err := f.gateway.Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("Evaluate() #2: %v", err)
	}
	if second.Decision.Approved {
		t.Fatal("second concurrent deployment approved despite max_concurrent 1")
	}

	entry, err := f.gateway.RecordOutcome(ctx, OutcomeRequest{
		ActorID: "dev-1", Role: "developer", Action: "deploy_service", Success: true,
	})
	if err != nil {
		t.Fatalf("RecordOutcome(): %v", err)
	}
	if entry.Outcome != core.OutcomeSuccess {
		t.Errorf("outcome entry = %s, want %s", entry.Outcome, core.OutcomeSuccess)
	}
	if stage := entry.Metadata["stage"]; stage != "execution" {
		t.Errorf("metadata stage = %v, want execution", stage)
	}

	third, err := f.gateway.Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("Evaluate() #3: %v", err)
	}
	if !third.Decision.Approved {
		t.Errorf("deployment after release not approved: %+v", third.Decision)
	}
}

func TestEvaluateConcurrentWindowLimit(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	if err := f.policies.RegisterActionPolicy(core.ActionPolicy{
		Action:         "batch_export",
		AllowedRoles:   []core.Role{"developer"},
		Classification: core.RiskLow,
		MaxPerWindow:   3,
	}); err != nil {
		t.Fatalf("RegisterActionPolicy(): %v", err)
	}

	const calls = 8 // window of 3 plus 5 over
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		approved int
		limited  int
	)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.gateway.Evaluate(ctx, EvaluateRequest{
				Actor: developer("dev-1"), Action: "batch_export",
			})
			if err != nil {
				t.Errorf("Evaluate(): %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if resp.Decision.Approved {
				approved++
			} else if resp.Decision.RiskScore == 0.7 {
				limited++
			}
		}()
	}
	wg.Wait()

	if approved != 3 || limited != 5 {
		t.Errorf("approved = %d, rate limited = %d; want 3 and 5", approved, limited)
	}

	// every call is audited, approvals and denials alike
	entries := f.auditEntries(t)
	if len(entries) != calls {
		t.Errorf("audit entries = %d, want %d", len(entries), calls)
	}
}

func TestResolveApprovalRequiresCapability(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.gateway.ResolveApproval(context.Background(), ResolveRequest{
		ApprovalID: "whatever", Approve: true, ResolvedBy: "dev-1", ResolverRole: "developer",
	})
	var httpErr HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusForbidden {
		t.Fatalf("ResolveApproval() as developer = %v, want 403", err)
	}
}

func TestResolveApprovalUnknownID(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.gateway.ResolveApproval(context.Background(), ResolveRequest{
		ApprovalID: "no-such-id", Approve: true, ResolvedBy: "alice", ResolverRole: "manager",
	})
	var httpErr HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("ResolveApproval(unknown) = %v, want 404", err)
	}
}

func TestResolveApprovalIsIdempotentConflict(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	resp, err := f.gateway.Evaluate(ctx, EvaluateRequest{Actor: developer("dev-1"), Action: "exploit_tool"})
	if err != nil {
		t.Fatalf("Evaluate(): %v", err)
	}

	resolved, err := f.gateway.ResolveApproval(ctx, ResolveRequest{
		ApprovalID: resp.Approval.ID, Approve: true, ResolvedBy: "alice", ResolverRole: "manager",
	})
	if err != nil {
		t.Fatalf("ResolveApproval() #1: %v", err)
	}
	if resolved.State != core.StateApproved || resolved.ResolvedBy != "alice" {
		t.Errorf("resolved = %+v, want approved by alice", resolved)
	}

	_, err = f.gateway.ResolveApproval(ctx, ResolveRequest{
		ApprovalID: resp.Approval.ID, Approve: false, ResolvedBy: "bob", ResolverRole: "manager",
	})
	var httpErr HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusConflict {
		t.Fatalf("ResolveApproval() #2 = %v, want 409", err)
	}

	// the stored record keeps the first resolution
	stored, err := f.approvals.Get(ctx, resp.Approval.ID)
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if stored.State != core.StateApproved || stored.ResolvedBy != "alice" {
		t.Errorf("stored approval = %+v, first resolution was overwritten", stored)
	}
}

func TestResolveApprovalDenyReleasesSlot(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	req := EvaluateRequest{Actor: developer("dev-1"), Action: "exploit_tool"}

	resp, err := f.gateway.Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("Evaluate() #1: %v", err)
	}

	// the escalated request still holds its concurrency slot
	blocked, err := f.gateway.Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("Evaluate() #2: %v", err)
	}
	if blocked.Decision.RequiresHumanApproval {
		t.Fatal("second request escalated while the slot was held")
	}

	if _, err := f.gateway.ResolveApproval(ctx, ResolveRequest{
		ApprovalID: resp.Approval.ID, Approve: false, ResolvedBy: "alice", ResolverRole: "manager",
	}); err != nil {
		t.Fatalf("ResolveApproval(): %v", err)
	}

	again, err := f.gateway.Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("Evaluate() #3: %v", err)
	}
	if !again.Decision.RequiresHumanApproval {
		t.Errorf("after denial the slot should be free again: %+v", again.Decision)
	}
}

func TestExpireApprovalsAutoDenies(t *testing.T) {
	f := newFixture(t, Options{ApprovalTTL: time.Hour})
	ctx := context.Background()

	resp, err := f.gateway.Evaluate(ctx, EvaluateRequest{Actor: developer("dev-1"), Action: "exploit_tool"})
	if err != nil {
		t.Fatalf("Evaluate(): %v", err)
	}

	// not yet expired
	denied, err := f.gateway.ExpireApprovals(ctx, time.Now().UTC().Add(30*time.Minute))
	if err != nil {
		t.Fatalf("ExpireApprovals(): %v", err)
	}
	if denied != 0 {
		t.Fatalf("ExpireApprovals(fresh) denied %d, want 0", denied)
	}

	denied, err = f.gateway.ExpireApprovals(ctx, time.Now().UTC().Add(2*time.Hour))
	if err != nil {
		t.Fatalf("ExpireApprovals(): %v", err)
	}
	if denied != 1 {
		t.Fatalf("ExpireApprovals(stale) denied %d, want 1", denied)
	}

	stored, err := f.approvals.Get(ctx, resp.Approval.ID)
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if stored.State != core.StateDenied || stored.ResolvedBy != "timeout" {
		t.Errorf("expired approval = %+v, want denied by timeout", stored)
	}

	// the sweep audits its denial: escalation entry plus timeout entry
	entries := f.auditEntries(t)
	if len(entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(entries))
	}
	last := entries[len(entries)-1]
	if last.Outcome != core.OutcomeDenied || last.Metadata["resolved_by"] != "timeout" {
		t.Errorf("timeout audit entry = %+v", last)
	}

	// a second sweep finds nothing left to deny
	denied, err = f.gateway.ExpireApprovals(ctx, time.Now().UTC().Add(3*time.Hour))
	if err != nil {
		t.Fatalf("ExpireApprovals(): %v", err)
	}
	if denied != 0 {
		t.Errorf("repeat sweep denied %d, want 0", denied)
	}
}

func TestEvaluateFailsClosedOnLedgerOutage(t *testing.T) {
	f := newFixture(t, Options{})
	f.ledger.failing = true

	resp, err := f.gateway.Evaluate(context.Background(), EvaluateRequest{
		Actor: developer("dev-1"), Action: "read_file",
	})
	if resp != nil {
		t.Fatalf("Evaluate() = %+v, want nil response on ledger outage", resp)
	}
	var httpErr HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Evaluate() err = %v, want 503", err)
	}
	if !errors.Is(err, core.ErrLedgerUnavailable) {
		t.Errorf("err = %v, want ErrLedgerUnavailable in the chain", err)
	}
}

func TestFailClosedDeniesOrphanedApproval(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	req := EvaluateRequest{Actor: developer("dev-1"), Action: "exploit_tool"}

	f.ledger.failing = true
	_, err := f.gateway.Evaluate(ctx, req)
	var httpErr HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Evaluate(escalating, ledger down) = %v, want 503", err)
	}

	// the approval created for the unaudited decision must not remain
	// open for a reviewer to sign off
	pending, err := f.gateway.ListApprovals(ctx, core.StateCreated)
	if err != nil {
		t.Fatalf("ListApprovals(): %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("%d approvals left resolvable after fail-closed evaluate", len(pending))
	}

	denied, err := f.gateway.ListApprovals(ctx, core.StateDenied)
	if err != nil {
		t.Fatalf("ListApprovals(): %v", err)
	}
	if len(denied) != 1 || denied[0].ResolvedBy != "audit-unavailable" {
		t.Fatalf("denied approvals = %+v, want one denied by audit-unavailable", denied)
	}

	_, err = f.gateway.ResolveApproval(ctx, ResolveRequest{
		ApprovalID: denied[0].ID, Approve: true, ResolvedBy: "alice", ResolverRole: "manager",
	})
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusConflict {
		t.Fatalf("ResolveApproval(orphan) = %v, want 409", err)
	}

	// the slot was released exactly once: after recovery the actor can
	// escalate again, and the reviewer's rejected resolve freed nothing
	f.ledger.failing = false
	resp, err := f.gateway.Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("Evaluate() after recovery: %v", err)
	}
	if !resp.Decision.RequiresHumanApproval {
		t.Errorf("decision after recovery = %+v, want escalated", resp.Decision)
	}

	// with the single slot held by the new escalation, a further request
	// is rate limited, so no phantom slot was freed along the way
	blocked, err := f.gateway.Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("Evaluate() against held slot: %v", err)
	}
	if blocked.Decision.Approved || blocked.Decision.RequiresHumanApproval {
		t.Errorf("decision against held slot = %+v, want rate limit denial", blocked.Decision)
	}
}

func TestFailOpenDefersLowRiskAudit(t *testing.T) {
	f := newFixture(t, Options{AuditFailure: FailOpen})
	ctx := context.Background()
	f.ledger.failing = true

	resp, err := f.gateway.Evaluate(ctx, EvaluateRequest{Actor: developer("dev-1"), Action: "read_file"})
	if err != nil {
		t.Fatalf("Evaluate(): %v", err)
	}
	if !resp.Decision.Approved || !resp.AuditDeferred {
		t.Fatalf("resp = %+v, want approved with deferred audit", resp)
	}
	if resp.AuditID != "" {
		t.Errorf("AuditID = %q on a deferred entry", resp.AuditID)
	}

	// retries fail while the ledger is still down and keep the queue
	flushed, err := f.gateway.FlushAuditRetries(ctx)
	if err == nil || flushed != 0 {
		t.Fatalf("FlushAuditRetries(down) = %d, %v; want 0 and an error", flushed, err)
	}

	f.ledger.failing = false
	flushed, err = f.gateway.FlushAuditRetries(ctx)
	if err != nil {
		t.Fatalf("FlushAuditRetries(): %v", err)
	}
	if flushed != 1 {
		t.Fatalf("FlushAuditRetries() = %d, want 1", flushed)
	}

	entries := f.auditEntries(t)
	if len(entries) != 1 {
		t.Fatalf("audit entries after flush = %d, want 1", len(entries))
	}
	if entries[0].Action != "read_file" || entries[0].Outcome != core.OutcomeApproved {
		t.Errorf("flushed entry = %+v", entries[0])
	}
}

func TestFailOpenStillClosesHighRisk(t *testing.T) {
	f := newFixture(t, Options{AuditFailure: FailOpen})
	ctx := context.Background()
	req := EvaluateRequest{Actor: developer("dev-1"), Action: "deploy_service"}

	f.ledger.failing = true
	_, err := f.gateway.Evaluate(ctx, req)
	var httpErr HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Evaluate(high, ledger down) = %v, want 503", err)
	}

	// failing closed released the slot; the action is not wedged
	f.ledger.failing = false
	resp, err := f.gateway.Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("Evaluate() after recovery: %v", err)
	}
	if !resp.Decision.Approved {
		t.Errorf("decision after recovery = %+v, want approved", resp.Decision)
	}
}

func TestRegisterPoliciesRequireManageCapability(t *testing.T) {
	f := newFixture(t, Options{})

	err := f.gateway.RegisterActionPolicy("developer", core.ActionPolicy{
		Action: "new_tool", AllowedRoles: []core.Role{"developer"}, Classification: core.RiskLow,
	})
	var httpErr HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusForbidden {
		t.Fatalf("RegisterActionPolicy() as developer = %v, want 403", err)
	}

	if err := f.gateway.RegisterActionPolicy("admin", core.ActionPolicy{
		Action: "new_tool", AllowedRoles: []core.Role{"developer"}, Classification: core.RiskLow,
	}); err != nil {
		t.Fatalf("RegisterActionPolicy() as admin: %v", err)
	}
	if _, err := f.policies.ActionPolicy("new_tool"); err != nil {
		t.Errorf("ActionPolicy(new_tool): %v", err)
	}

	err = f.gateway.RegisterRolePolicy("developer", "intern", nil)
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusForbidden {
		t.Fatalf("RegisterRolePolicy() as developer = %v, want 403", err)
	}
	if err := f.gateway.RegisterRolePolicy("admin", "intern", []core.Capability{core.CapViewAudit}); err != nil {
		t.Fatalf("RegisterRolePolicy() as admin: %v", err)
	}
	if !f.policies.HasCapability("intern", core.CapViewAudit) {
		t.Error("intern missing the capability just registered")
	}
}

func TestExplainDoesNotConsumeLimits(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		resp := f.gateway.Explain(ctx, ExplainRequest{Actor: developer("dev-1"), Action: "deploy_service"})
		if !resp.Trace.Decision.Approved {
			t.Fatalf("Explain() #%d decision = %+v", i, resp.Trace.Decision)
		}
	}

	// no approval records and no audit entries from dry runs
	pending, err := f.gateway.ListApprovals(ctx, "")
	if err != nil {
		t.Fatalf("ListApprovals(): %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("dry runs created %d approvals", len(pending))
	}
	if entries := f.auditEntries(t); len(entries) != 0 {
		t.Errorf("dry runs appended %d audit entries", len(entries))
	}

	// the real evaluate still has its slot available
	resp, err := f.gateway.Evaluate(ctx, EvaluateRequest{Actor: developer("dev-1"), Action: "deploy_service"})
	if err != nil {
		t.Fatalf("Evaluate(): %v", err)
	}
	if !resp.Decision.Approved {
		t.Errorf("decision = %+v, want approved", resp.Decision)
	}
}
