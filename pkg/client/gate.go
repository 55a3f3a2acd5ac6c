package client

import (
	"context"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api"
	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/internal/service"
)

// Evaluate asks the gateway for a governance decision. The decision is
// always recorded in the audit ledger, approved or not.
func (c *Client) Evaluate(
	ctx context.Context,
	req service.EvaluateRequest,
) (*service.EvaluateResponse, string, error) {
	var resp service.EvaluateResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.EvaluateRoute).
		build(), req, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// RecordOutcome reports the execution result of an approved action.
func (c *Client) RecordOutcome(
	ctx context.Context,
	req service.OutcomeRequest,
) (*core.AuditEntry, string, error) {
	var entry core.AuditEntry
	correlation, err := c.post(ctx, c.url().
		setPath(api.OutcomeRoute).
		build(), req, &entry)
	if err != nil {
		return nil, correlation, err
	}
	return &entry, correlation, nil
}

// Explain dry-runs a decision and returns the full check trace.
func (c *Client) Explain(
	ctx context.Context,
	req service.ExplainRequest,
) (*service.ExplainResponse, string, error) {
	var resp service.ExplainResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.ExplainRoute).
		build(), req, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}
