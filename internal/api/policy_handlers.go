package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api/presenter"
	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

// handleListActions lists the registered action policies.
func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, s.gateway.Policies().Actions(), http.StatusOK)
}

type RegisterActionPayload struct {
	Action           string         `json:"action"`
	AllowedRoles     []core.Role    `json:"allowed_roles"`
	Classification   core.RiskClass `json:"classification"`
	RequiresApproval bool           `json:"requires_approval"`
	MaxConcurrent    int            `json:"max_concurrent"`
	MaxPerWindow     int            `json:"max_per_window"`

	// WindowSeconds is the rate limit window; zero means the default.
	WindowSeconds int `json:"window_seconds"`
}

// handleRegisterAction creates or replaces an action policy at runtime.
func (s *Server) handleRegisterAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload RegisterActionPayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode action policy payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	pol := core.ActionPolicy{
		Action:           payload.Action,
		AllowedRoles:     payload.AllowedRoles,
		Classification:   payload.Classification,
		RequiresApproval: payload.RequiresApproval,
		MaxConcurrent:    payload.MaxConcurrent,
		MaxPerWindow:     payload.MaxPerWindow,
		Window:           time.Duration(payload.WindowSeconds) * time.Second,
	}

	if err := s.gateway.RegisterActionPolicy(requestRole(r), pol); err != nil {
		logger.Warn().Err(err).Str("action", payload.Action).Msg("failed to register action policy")
		presenter.Err(w, r, err, "failed to register action policy")
		return
	}

	logger.Info().Str("action", payload.Action).Msg("action policy registered")
	presenter.JSON(w, r, pol, http.StatusCreated)
}

type RegisterRolePayload struct {
	Role         core.Role         `json:"role"`
	Capabilities []core.Capability `json:"capabilities"`
}

// handleRegisterRole creates or replaces a role's capability grants.
func (s *Server) handleRegisterRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload RegisterRolePayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode role policy payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Role == "" {
		presenter.Error(w, r, "role is required", http.StatusBadRequest)
		return
	}

	if err := s.gateway.RegisterRolePolicy(requestRole(r), payload.Role, payload.Capabilities); err != nil {
		logger.Warn().Err(err).Str("role", string(payload.Role)).Msg("failed to register role policy")
		presenter.Err(w, r, err, "failed to register role policy")
		return
	}

	logger.Info().Str("role", string(payload.Role)).Msg("role policy registered")
	presenter.JSON(w, r, payload, http.StatusCreated)
}
