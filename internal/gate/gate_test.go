package gate

import (
	"context"
	"testing"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/internal/policy"
	"github.com/Senpai-Sama7/Astro-sub000/internal/risk"
	"github.com/Senpai-Sama7/Astro-sub000/internal/store"
)

func testGate(t *testing.T) (*Gate, *store.InMemoryApprovalStore) {
	t.Helper()

	policies := policy.NewStore()
	policies.RegisterRolePolicy("admin", []core.Capability{core.CapViewAudit, core.CapManagePolicies, core.CapResolveApprovals})
	policies.RegisterRolePolicy("developer", nil)
	policies.RegisterRolePolicy("guest", nil)
	policies.RegisterRolePolicy("red-team", nil)

	actions := []core.ActionPolicy{
		{
			Action:         "read_file",
			AllowedRoles:   []core.Role{"admin", "developer", "guest"},
			Classification: core.RiskLow,
		},
		{
			Action:         "deploy_service",
			AllowedRoles:   []core.Role{"admin", "developer"},
			Classification: core.RiskHigh,
			MaxConcurrent:  1,
		},
		{
			Action:           "exploit_tool",
			AllowedRoles:     []core.Role{"red-team"},
			Classification:   core.RiskCritical,
			RequiresApproval: true,
		},
		{
			Action:         "delete_database",
			AllowedRoles:   []core.Role{"admin"},
			Classification: core.RiskCritical,
		},
	}
	for _, pol := range actions {
		if err := policies.RegisterActionPolicy(pol); err != nil {
			t.Fatalf("RegisterActionPolicy(%s): %v", pol.Action, err)
		}
	}

	approvals := store.NewInMemoryApprovalStore()
	return New(policies, risk.New(risk.DefaultWeights()), approvals, NewLimiter(0)), approvals
}

func activeActor(id string, role core.Role) core.Actor {
	return core.Actor{ID: id, Role: role, Active: true}
}

func TestDecideCheckOrder(t *testing.T) {
	tests := []struct {
		name      string
		actor     core.Actor
		action    string
		wantScore float64
	}{
		{
			name:      "inactive actor denied first",
			actor:     core.Actor{ID: "a1", Role: "admin", Active: false},
			action:    "read_file",
			wantScore: 1.0,
		},
		{
			name:      "unknown action",
			actor:     activeActor("a1", "admin"),
			action:    "launch_missiles",
			wantScore: 0.9,
		},
		{
			name:      "role not allowed",
			actor:     activeActor("a1", "guest"),
			action:    "delete_database",
			wantScore: 0.8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := testGate(t)
			decision, approval, err := g.Decide(context.Background(), "corr-1", tt.actor, tt.action, core.RiskContext{})
			if err != nil {
				t.Fatalf("Decide(): %v", err)
			}
			if decision.Approved {
				t.Error("Decide() approved, want denied")
			}
			if decision.RiskScore != tt.wantScore {
				t.Errorf("RiskScore = %v, want %v", decision.RiskScore, tt.wantScore)
			}
			if decision.RequiresHumanApproval || approval != nil {
				t.Error("hard denial must not escalate to human review")
			}
		})
	}
}

func TestDecideInactiveBeatsUnknownAction(t *testing.T) {
	g, _ := testGate(t)

	// both conditions hold; the inactive check must win
	decision, _, err := g.Decide(context.Background(), "corr-1",
		core.Actor{ID: "a1", Role: "admin", Active: false}, "launch_missiles", core.RiskContext{})
	if err != nil {
		t.Fatalf("Decide(): %v", err)
	}
	if decision.RiskScore != 1.0 {
		t.Errorf("RiskScore = %v, want 1.0 (inactive check first)", decision.RiskScore)
	}
}

func TestDecideRoleDenialNeverEscalates(t *testing.T) {
	g, approvals := testGate(t)

	// exploit_tool requires approval, but a developer is not in its
	// allowed roles: that's a deny, not an escalation
	decision, approval, err := g.Decide(context.Background(), "corr-1",
		activeActor("dev-1", "developer"), "exploit_tool", core.RiskContext{})
	if err != nil {
		t.Fatalf("Decide(): %v", err)
	}
	if decision.Approved || decision.RequiresHumanApproval || approval != nil {
		t.Errorf("Decide() = %+v, want plain denial", decision)
	}

	pending, err := approvals.List(context.Background(), core.StateCreated)
	if err != nil {
		t.Fatalf("List(): %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("found %d pending approvals, want 0", len(pending))
	}
}

func TestDecideApprovesLowRisk(t *testing.T) {
	g, _ := testGate(t)

	decision, approval, err := g.Decide(context.Background(), "corr-1",
		activeActor("guest-1", "guest"), "read_file",
		core.RiskContext{Target: "/tmp/report.csv"})
	if err != nil {
		t.Fatalf("Decide(): %v", err)
	}
	if !decision.Approved {
		t.Errorf("Decide() denied low-risk read: %+v", decision)
	}
	if approval != nil {
		t.Error("approved request must not create a pending approval")
	}
	if decision.RiskScore < 0 || decision.RiskScore > 1 {
		t.Errorf("RiskScore %v outside [0,1]", decision.RiskScore)
	}
}

func TestDecideEscalatesRequiredApproval(t *testing.T) {
	g, approvals := testGate(t)

	decision, approval, err := g.Decide(context.Background(), "corr-99",
		activeActor("red-1", "red-team"), "exploit_tool",
		core.RiskContext{Target: "10.0.0.99"})
	if err != nil {
		t.Fatalf("Decide(): %v", err)
	}
	if decision.Approved {
		t.Error("Decide() approved an approval-required action")
	}
	if !decision.RequiresHumanApproval {
		t.Fatal("Decide() did not escalate")
	}
	if approval == nil {
		t.Fatal("no pending approval returned")
	}
	if approval.ID == "" || approval.State != core.StateCreated {
		t.Errorf("approval = %+v, want CREATED with an ID", approval)
	}
	if approval.CorrelationID != "corr-99" {
		t.Errorf("CorrelationID = %q, want corr-99", approval.CorrelationID)
	}

	got, err := approvals.Get(context.Background(), approval.ID)
	if err != nil {
		t.Fatalf("Get(%s): %v", approval.ID, err)
	}
	if got.ActorID != "red-1" || got.Action != "exploit_tool" {
		t.Errorf("stored approval = %+v", got)
	}
}

func TestDecideEscalationLevels(t *testing.T) {
	g, _ := testGate(t)

	// exploit_tool is critical; off-hours, a bad history and a remote
	// target push the score into the admin tier
	decision, _, err := g.Decide(context.Background(), "c", activeActor("red-1", "red-team"),
		"exploit_tool", core.RiskContext{Target: "target.example.com", HistoricalAvg: floatPtr(1.0), HourOfDay: intPtr(2)})
	if err != nil {
		t.Fatalf("Decide(): %v", err)
	}
	if decision.Escalation != core.EscalationAdmin {
		t.Errorf("Escalation = %v (score %v), want admin", decision.Escalation, decision.RiskScore)
	}

	// scheduled local request scores low, requires_approval still
	// escalates but only to manager
	decision, _, err = g.Decide(context.Background(), "c", activeActor("red-2", "red-team"),
		"exploit_tool", core.RiskContext{Target: "localhost", Scheduled: true})
	if err != nil {
		t.Fatalf("Decide(): %v", err)
	}
	if !decision.RequiresHumanApproval {
		t.Fatal("requires_approval action did not escalate")
	}
	if decision.Escalation != core.EscalationManager {
		t.Errorf("Escalation = %v (score %v), want manager", decision.Escalation, decision.RiskScore)
	}
}

func TestDecideRateLimited(t *testing.T) {
	g, _ := testGate(t)
	ctx := context.Background()
	actor := activeActor("dev-1", "developer")

	first, _, err := g.Decide(ctx, "c1", actor, "deploy_service", core.RiskContext{Scheduled: true, Target: "localhost"})
	if err != nil {
		t.Fatalf("Decide() #1: %v", err)
	}
	if !first.Approved {
		t.Fatalf("Decide() #1 = %+v, want approval", first)
	}

	// the first deployment is still in flight, MaxConcurrent is 1
	second, _, err := g.Decide(ctx, "c2", actor, "deploy_service", core.RiskContext{Scheduled: true, Target: "localhost"})
	if err != nil {
		t.Fatalf("Decide() #2: %v", err)
	}
	if second.Approved {
		t.Error("Decide() #2 approved past the concurrency cap")
	}
	if second.RiskScore != 0.7 {
		t.Errorf("RiskScore = %v, want 0.7", second.RiskScore)
	}

	// releasing the slot lets the next request through
	g.Limiter().Release(actor.ID, "deploy_service")
	third, _, err := g.Decide(ctx, "c3", actor, "deploy_service", core.RiskContext{Scheduled: true, Target: "localhost"})
	if err != nil {
		t.Fatalf("Decide() #3: %v", err)
	}
	if !third.Approved {
		t.Errorf("Decide() #3 = %+v, want approval after release", third)
	}
}

func TestExplainConsumesNothing(t *testing.T) {
	g, approvals := testGate(t)
	ctx := context.Background()
	actor := activeActor("red-1", "red-team")

	for i := 0; i < 5; i++ {
		trace := g.Explain(ctx, actor, "exploit_tool", core.RiskContext{})
		if !trace.Decision.RequiresHumanApproval {
			t.Fatalf("Explain() run %d: decision %+v, want escalation", i, trace.Decision)
		}
		if len(trace.Checks) == 0 {
			t.Fatal("Explain() returned no checks")
		}
	}

	pending, err := approvals.List(ctx, core.StateCreated)
	if err != nil {
		t.Fatalf("List(): %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Explain() created %d approvals, want 0", len(pending))
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
