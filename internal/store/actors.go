package store

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

// ActorDirectory tracks known actors and their live sessions. Actors are
// registered on first authentication and only ever deactivated, never
// removed, so audit entries keep resolving to a stable identity.
type ActorDirectory struct {
	mu     sync.RWMutex
	actors map[string]core.Actor
}

func NewActorDirectory() *ActorDirectory {
	return &ActorDirectory{actors: make(map[string]core.Actor)}
}

// Put registers or updates an actor record.
func (d *ActorDirectory) Put(actor core.Actor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actors[actor.ID] = actor
}

func (d *ActorDirectory) Get(id string) (core.Actor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	actor, ok := d.actors[id]
	return actor, ok
}

// List returns all known actors, sorted by ID.
func (d *ActorDirectory) List() []core.Actor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]core.Actor, 0, len(d.actors))
	for _, actor := range d.actors {
		out = append(out, actor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Deactivate flags the actor as inactive. Unknown IDs are an error so a
// typo cannot silently "deactivate" nobody.
func (d *ActorDirectory) Deactivate(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	actor, ok := d.actors[id]
	if !ok {
		return fmt.Errorf("unknown actor '%s'", id)
	}
	actor.Active = false
	d.actors[id] = actor
	return nil
}

// AddSession records a live session identifier for the actor.
func (d *ActorDirectory) AddSession(id, session string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	actor, ok := d.actors[id]
	if !ok {
		return fmt.Errorf("unknown actor '%s'", id)
	}
	if !slices.Contains(actor.Sessions, session) {
		actor.Sessions = append(actor.Sessions, session)
	}
	d.actors[id] = actor
	return nil
}

// DropSession removes a session identifier, if present.
func (d *ActorDirectory) DropSession(id, session string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	actor, ok := d.actors[id]
	if !ok {
		return
	}
	actor.Sessions = slices.DeleteFunc(actor.Sessions, func(s string) bool { return s == session })
	d.actors[id] = actor
}
