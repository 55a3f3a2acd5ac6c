package client

import (
	"context"
	"time"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api"
	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

type ListAuditsOpts struct {
	Limit uint

	// Role is the gateway role the query acts as; it must carry the
	// view-audit capability for entries to be returned.
	Role string

	ActorID  string
	Action   string
	Resource string
	From     time.Time
	To       time.Time
}

// ListAudits retrieves audit ledger entries matching the options.
func (c *Client) ListAudits(ctx context.Context, opts ListAuditsOpts) ([]core.AuditEntry, string, error) {
	ub := c.url().setPath(api.ListAuditsRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.Role != "" {
		ub = ub.addQueryParam("role", opts.Role)
	}
	if opts.ActorID != "" {
		ub = ub.addQueryParam("actor_id", opts.ActorID)
	}
	if opts.Action != "" {
		ub = ub.addQueryParam("action", opts.Action)
	}
	if opts.Resource != "" {
		ub = ub.addQueryParam("resource", opts.Resource)
	}
	if !opts.From.IsZero() {
		ub = ub.addQueryParam("from", opts.From.Format(time.RFC3339))
	}
	if !opts.To.IsZero() {
		ub = ub.addQueryParam("to", opts.To.Format(time.RFC3339))
	}
	var resp []core.AuditEntry
	correlation, err := c.get(ctx, ub.build(), &resp)
	return resp, correlation, err
}

// VerifyLedger asks the server to re-check every ledger signature.
func (c *Client) VerifyLedger(ctx context.Context) (*core.IntegrityReport, string, error) {
	var report core.IntegrityReport
	correlation, err := c.get(ctx, c.url().
		setPath(api.VerifyLedgerRoute).
		build(), &report)
	if err != nil {
		return nil, correlation, err
	}
	return &report, correlation, nil
}
