package client

import (
	"context"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api"
	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

// ListActors lists every actor the gateway has seen, including
// deactivated ones.
func (c *Client) ListActors(ctx context.Context) ([]core.Actor, string, error) {
	var resp []core.Actor
	correlation, err := c.get(ctx, c.url().setPath(api.ListActorsRoute).build(), &resp)
	return resp, correlation, err
}

// DeactivateActor flags the actor as inactive; its future evaluate
// requests are denied.
func (c *Client) DeactivateActor(ctx context.Context, id string) (string, error) {
	return c.post(ctx, c.url().
		setPath(api.DeactivateActorRoute).
		setPathParam("id", id).
		build(), nil, nil)
}

// AddActorSession records a live session identifier for the actor.
func (c *Client) AddActorSession(ctx context.Context, id, session string) (string, error) {
	return c.post(ctx, c.url().
		setPath(api.ActorSessionsRoute).
		setPathParam("id", id).
		build(), api.SessionPayload{Session: session}, nil)
}

// DropActorSession removes a session identifier from the actor.
func (c *Client) DropActorSession(ctx context.Context, id, session string) (string, error) {
	return c.delete(ctx, c.url().
		setPath(api.ActorSessionRoute).
		setPathParam("id", id).
		setPathParam("session", session).
		build())
}
