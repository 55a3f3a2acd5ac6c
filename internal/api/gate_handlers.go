package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api/middleware"
	"github.com/Senpai-Sama7/Astro-sub000/internal/api/presenter"
	"github.com/Senpai-Sama7/Astro-sub000/internal/service"
)

// handleEvaluate runs a governance decision for a requested action and
// records it in the audit ledger.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var req service.EvaluateRequest
	if err := DecodePayload(r, &req, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode evaluate request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Actor.ID == "" || req.Action == "" {
		presenter.Error(w, r, "actor.id and action are required", http.StatusBadRequest)
		return
	}

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("actor", req.Actor.ID).Str("action", req.Action)
	})

	resp, err := s.gateway.Evaluate(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("evaluation failed")
		presenter.Err(w, r, err, "evaluation failed")
		return
	}

	logger.Info().
		Bool("approved", resp.Decision.Approved).
		Float64("risk_score", resp.Decision.RiskScore).
		Str("outcome", string(resp.Decision.Outcome())).
		Msg("decision recorded")

	presenter.JSON(w, r, resp, http.StatusOK)
}

// handleOutcome records the execution result of a previously approved action.
func (s *Server) handleOutcome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var req service.OutcomeRequest
	if err := DecodePayload(r, &req, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode outcome request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}
	if req.ActorID == "" || req.Action == "" {
		presenter.Error(w, r, "actor_id and action are required", http.StatusBadRequest)
		return
	}

	entry, err := s.gateway.RecordOutcome(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("failed to record outcome")
		presenter.Err(w, r, err, "failed to record outcome")
		return
	}

	presenter.JSON(w, r, entry, http.StatusCreated)
}

// handleExplain dry-runs a decision without consuming rate limits or
// creating pending approvals.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)
	reqID := middleware.CorrelationCtx(ctx)

	var req service.ExplainRequest
	if err := DecodePayload(r, &req, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode explain request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Actor.ID == "" || req.Action == "" {
		presenter.Error(w, r, "actor.id and action are required", http.StatusBadRequest)
		return
	}

	resp := s.gateway.Explain(ctx, req)
	resp.Trace.CorrelationID = reqID

	presenter.JSON(w, r, resp, http.StatusOK)
}
