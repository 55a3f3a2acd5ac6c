package client

import (
	"context"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api"
	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

// ListApprovals lists approvals, optionally filtered by state.
func (c *Client) ListApprovals(ctx context.Context, state core.ApprovalState) ([]core.PendingApproval, string, error) {
	ub := c.url().setPath(api.ListApprovalsRoute)
	if state != "" {
		ub = ub.addQueryParam("state", string(state))
	}
	var resp []core.PendingApproval
	correlation, err := c.get(ctx, ub.build(), &resp)
	return resp, correlation, err
}

// ResolveApproval applies a sign-off to a pending approval.
func (c *Client) ResolveApproval(
	ctx context.Context,
	id string,
	payload api.ResolvePayload,
) (*core.PendingApproval, string, error) {
	var approval core.PendingApproval
	correlation, err := c.post(ctx, c.url().
		setPath(api.ResolveApprovalRoute).
		setPathParam("id", id).
		build(), payload, &approval)
	if err != nil {
		return nil, correlation, err
	}
	return &approval, correlation, nil
}
