package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api/presenter"
)

// handleListActors lists every actor the directory has seen, including
// deactivated ones.
func (s *Server) handleListActors(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, s.gateway.Actors().List(), http.StatusOK)
}

// handleDeactivateActor flags the actor as inactive. Deactivated actors
// stay in the directory so past audit entries keep resolving.
func (s *Server) handleDeactivateActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	if id == "" {
		presenter.Error(w, r, "missing actor id", http.StatusBadRequest)
		return
	}

	if err := s.gateway.Actors().Deactivate(id); err != nil {
		presenter.Error(w, r, err.Error(), http.StatusNotFound)
		return
	}

	log.Ctx(ctx).Info().Str("actor", id).Msg("actor deactivated")
	w.WriteHeader(http.StatusNoContent)
}

type SessionPayload struct {
	Session string `json:"session"`
}

// handleAddActorSession records a live session identifier for the actor.
func (s *Server) handleAddActorSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	id := r.PathValue("id")
	if id == "" {
		presenter.Error(w, r, "missing actor id", http.StatusBadRequest)
		return
	}

	var payload SessionPayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode session payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Session == "" {
		presenter.Error(w, r, "session is required", http.StatusBadRequest)
		return
	}

	if err := s.gateway.Actors().AddSession(id, payload.Session); err != nil {
		presenter.Error(w, r, err.Error(), http.StatusNotFound)
		return
	}

	logger.Debug().Str("actor", id).Str("session", payload.Session).Msg("session registered")
	w.WriteHeader(http.StatusCreated)
}

// handleDropActorSession removes a session identifier. Dropping an
// unknown session is a no-op so clients can fire-and-forget on logout.
func (s *Server) handleDropActorSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	session := r.PathValue("session")
	if id == "" || session == "" {
		presenter.Error(w, r, "missing actor id or session", http.StatusBadRequest)
		return
	}

	s.gateway.Actors().DropSession(id, session)
	w.WriteHeader(http.StatusNoContent)
}
