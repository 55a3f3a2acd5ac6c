package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api/middleware"
	"github.com/Senpai-Sama7/Astro-sub000/internal/api/presenter"
	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/internal/service"
)

// handleListApprovals lists pending approvals, optionally filtered by
// state via ?state=CREATED|APPROVED|DENIED.
func (s *Server) handleListApprovals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state := core.ApprovalState(r.URL.Query().Get("state"))

	approvals, err := s.gateway.ListApprovals(ctx, state)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list approvals")
		presenter.Err(w, r, err, "failed to list approvals")
		return
	}

	presenter.JSON(w, r, approvals, http.StatusOK)
}

type ResolvePayload struct {
	Approve      bool   `json:"approve"`
	ResolvedBy   string `json:"resolved_by"`
	ResolverRole string `json:"resolver_role,omitempty"`
}

// handleResolveApproval applies a human sign-off to a pending approval.
func (s *Server) handleResolveApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	id := r.PathValue("id")
	if id == "" {
		presenter.Error(w, r, "missing approval id", http.StatusBadRequest)
		return
	}

	var payload ResolvePayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode resolve request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.ResolvedBy == "" {
		presenter.Error(w, r, "resolved_by is required", http.StatusBadRequest)
		return
	}

	resolverRole := selectRole(middleware.RolesCtx(ctx), payload.ResolverRole)

	approval, err := s.gateway.ResolveApproval(ctx, service.ResolveRequest{
		ApprovalID:   id,
		Approve:      payload.Approve,
		ResolvedBy:   payload.ResolvedBy,
		ResolverRole: resolverRole,
	})
	if err != nil {
		logger.Warn().Err(err).Str("approval_id", id).Msg("failed to resolve approval")
		presenter.Err(w, r, err, "failed to resolve approval")
		return
	}

	logger.Info().
		Str("approval_id", id).
		Str("state", string(approval.State)).
		Str("resolved_by", payload.ResolvedBy).
		Msg("approval resolved")

	presenter.JSON(w, r, approval, http.StatusOK)
}
