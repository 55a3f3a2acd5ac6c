package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/internal/policy"
	"github.com/Senpai-Sama7/Astro-sub000/internal/risk"
)

// adminEscalationScore routes escalations at or above this score to the
// admin tier instead of manager.
const adminEscalationScore = 0.75

// Gate combines a policy lookup and a risk score into a Decision, and
// owns the creation of PendingApproval records for escalated requests.
// Decide never blocks waiting for a human; resolution is a separate call.
type Gate struct {
	policies  *policy.Store
	evaluator *risk.Evaluator
	approvals core.ApprovalStore
	limiter   *Limiter
}

func New(policies *policy.Store, evaluator *risk.Evaluator, approvals core.ApprovalStore, limiter *Limiter) *Gate {
	return &Gate{
		policies:  policies,
		evaluator: evaluator,
		approvals: approvals,
		limiter:   limiter,
	}
}

// Limiter exposes the shared counters so the gateway can release
// concurrency slots when outcomes are recorded.
func (g *Gate) Limiter() *Limiter {
	return g.limiter
}

// Decide runs the fixed check order. Every branch produces a Decision
// the caller must audit, including early denials. The returned
// PendingApproval is non-nil only when the decision escalates.
func (g *Gate) Decide(ctx context.Context, correlationID string, actor core.Actor, action string, rc core.RiskContext) (core.Decision, *core.PendingApproval, error) {
	if !actor.Active {
		return core.Decision{
			RiskScore:  1.0,
			Reason:     core.ErrActorInactive.Error(),
			Escalation: core.EscalationNone,
		}, nil, nil
	}

	pol, err := g.policies.ActionPolicy(action)
	if err != nil {
		return core.Decision{
			RiskScore:  0.9,
			Reason:     fmt.Sprintf("unknown action '%s'", action),
			Escalation: core.EscalationNone,
		}, nil, nil
	}

	// an RBAC failure is a hard deny, never escalated to human review
	if !pol.RoleAllowed(actor.Role) {
		return core.Decision{
			RiskScore:  0.8,
			Reason:     fmt.Sprintf("role '%s' not permitted for action '%s'", actor.Role, action),
			Escalation: core.EscalationNone,
		}, nil, nil
	}

	if err := g.limiter.Acquire(actor.ID, pol, time.Now().UTC()); err != nil {
		return core.Decision{
			RiskScore:  0.7,
			Reason:     err.Error(),
			Escalation: core.EscalationNone,
		}, nil, nil
	}

	score := g.evaluator.Score(rc, pol)

	if pol.RequiresApproval || score >= pol.Classification.ApprovalThreshold() {
		level := core.EscalationManager
		if score >= adminEscalationScore {
			level = core.EscalationAdmin
		}

		decision := core.Decision{
			RiskScore:             score,
			Reason:                escalationReason(pol, score),
			RequiresHumanApproval: true,
			Escalation:            level,
		}

		approval, err := g.approvals.Create(ctx, core.PendingApproval{
			CorrelationID: correlationID,
			ActorID:       actor.ID,
			Action:        action,
			Resource:      rc.Target,
			RiskScore:     score,
			Escalation:    level,
		})
		if err != nil {
			// without a pending record nobody could ever sign off, so
			// the request fails closed
			g.limiter.Release(actor.ID, action)
			return core.Decision{
				RiskScore:  score,
				Reason:     "approval tracking unavailable",
				Escalation: core.EscalationNone,
			}, nil, fmt.Errorf("creating pending approval: %w", err)
		}
		return decision, &approval, nil
	}

	return core.Decision{
		Approved:   true,
		RiskScore:  score,
		Reason:     fmt.Sprintf("risk %.2f within %s tolerance", score, pol.Classification),
		Escalation: core.EscalationNone,
	}, nil, nil
}

func escalationReason(pol core.ActionPolicy, score float64) string {
	if pol.RequiresApproval {
		return fmt.Sprintf("action '%s' requires human approval", pol.Action)
	}
	return fmt.Sprintf("risk %.2f at or above %s threshold %.2f", score, pol.Classification, pol.Classification.ApprovalThreshold())
}

// Check is one evaluated step of an explain trace.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Trace captures why a request would be approved, denied or escalated.
type Trace struct {
	CorrelationID string        `json:"correlation_id,omitempty"`
	Checks        []Check       `json:"checks"`
	Factors       []risk.Factor `json:"factors,omitempty"`
	Decision      core.Decision `json:"decision"`
}

// Explain dry-runs the decision pipeline: no approval record is created
// and no rate counter is consumed.
func (g *Gate) Explain(_ context.Context, actor core.Actor, action string, rc core.RiskContext) Trace {
	trace := Trace{}
	add := func(name string, passed bool, detail string) {
		trace.Checks = append(trace.Checks, Check{Name: name, Passed: passed, Detail: detail})
	}

	if !actor.Active {
		add("actor-active", false, "actor is deactivated")
		trace.Decision = core.Decision{RiskScore: 1.0, Reason: core.ErrActorInactive.Error(), Escalation: core.EscalationNone}
		return trace
	}
	add("actor-active", true, "")

	pol, err := g.policies.ActionPolicy(action)
	if err != nil {
		add("action-registered", false, fmt.Sprintf("no policy for '%s'", action))
		trace.Decision = core.Decision{RiskScore: 0.9, Reason: fmt.Sprintf("unknown action '%s'", action), Escalation: core.EscalationNone}
		return trace
	}
	add("action-registered", true, fmt.Sprintf("classification %s", pol.Classification))

	if !pol.RoleAllowed(actor.Role) {
		add("role-allowed", false, fmt.Sprintf("role '%s' not in allowed roles", actor.Role))
		trace.Decision = core.Decision{RiskScore: 0.8, Reason: fmt.Sprintf("role '%s' not permitted for action '%s'", actor.Role, action), Escalation: core.EscalationNone}
		return trace
	}
	add("role-allowed", true, "")

	if err := g.limiter.Peek(actor.ID, pol, time.Now().UTC()); err != nil {
		add("rate-limit", false, err.Error())
		trace.Decision = core.Decision{RiskScore: 0.7, Reason: err.Error(), Escalation: core.EscalationNone}
		return trace
	}
	add("rate-limit", true, "")

	score, factors := g.evaluator.Explain(rc, pol)
	trace.Factors = factors

	if pol.RequiresApproval || score >= pol.Classification.ApprovalThreshold() {
		level := core.EscalationManager
		if score >= adminEscalationScore {
			level = core.EscalationAdmin
		}
		add("risk-tolerance", false, escalationReason(pol, score))
		trace.Decision = core.Decision{
			RiskScore:             score,
			Reason:                escalationReason(pol, score),
			RequiresHumanApproval: true,
			Escalation:            level,
		}
		return trace
	}

	add("risk-tolerance", true, fmt.Sprintf("score %.2f below threshold %.2f", score, pol.Classification.ApprovalThreshold()))
	trace.Decision = core.Decision{
		Approved:   true,
		RiskScore:  score,
		Reason:     fmt.Sprintf("risk %.2f within %s tolerance", score, pol.Classification),
		Escalation: core.EscalationNone,
	}
	return trace
}
