package client

import (
	"context"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api"
	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

// ListActions lists the registered action policies.
func (c *Client) ListActions(ctx context.Context) ([]core.ActionPolicy, string, error) {
	var resp []core.ActionPolicy
	correlation, err := c.get(ctx, c.url().
		setPath(api.PoliciesActionsRoute).
		build(), &resp)
	return resp, correlation, err
}

// RegisterAction creates or replaces an action policy.
func (c *Client) RegisterAction(ctx context.Context, role string, payload api.RegisterActionPayload) (string, error) {
	return c.post(ctx, c.url().
		setPath(api.PoliciesActionsRoute).
		addQueryParam("role", role).
		build(), payload, nil)
}

// RegisterRole creates or replaces a role's capability grants.
func (c *Client) RegisterRole(ctx context.Context, role string, payload api.RegisterRolePayload) (string, error) {
	return c.post(ctx, c.url().
		setPath(api.PoliciesRolesRoute).
		addQueryParam("role", role).
		build(), payload, nil)
}
