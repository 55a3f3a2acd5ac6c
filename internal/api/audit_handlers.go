package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api/middleware"
	"github.com/Senpai-Sama7/Astro-sub000/internal/api/presenter"
	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

// handleAuditQuery retrieves audit ledger entries, newest last.
func (s *Server) handleAuditQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	q := r.URL.Query()

	filter := core.Filter{
		ActorID:  q.Get("actor_id"),
		Action:   q.Get("action"),
		Resource: q.Get("resource"),
		Limit:    50,
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil {
			logger.Warn().Err(err).Str("limit", limitStr).Msg("invalid limit parameter")
			presenter.Error(w, r, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		filter.Limit = v
	}

	for param, dest := range map[string]*time.Time{"from": &filter.From, "to": &filter.To} {
		if raw := q.Get(param); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				logger.Warn().Err(err).Str(param, raw).Msg("invalid time parameter")
				presenter.Error(w, r, "invalid "+param+" parameter", http.StatusBadRequest)
				return
			}
			*dest = t
		}
	}

	entries, err := s.gateway.QueryAudit(ctx, requestRole(r), filter)
	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve audit entries")
		presenter.Err(w, r, err, "failed to retrieve audit entries")
		return
	}

	presenter.JSON(w, r, entries, http.StatusOK)
}

// handleAuditVerify re-checks every ledger signature and reports
// tampered entry IDs.
func (s *Server) handleAuditVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	report, err := s.gateway.VerifyLedger(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("ledger verification failed")
		presenter.Err(w, r, err, "ledger verification failed")
		return
	}

	if !report.Valid {
		logger.Warn().
			Int("checked", report.Checked).
			Strs("tampered_ids", report.TamperedIDs).
			Msg("ledger integrity check found tampered entries")
	}

	presenter.JSON(w, r, report, http.StatusOK)
}

// requestRole resolves the gateway role a request acts as. The roles
// claim of the operator token is authoritative; an explicit ?role=
// parameter only selects among those roles, it cannot assert a role the
// token does not carry.
func requestRole(r *http.Request) core.Role {
	return selectRole(middleware.RolesCtx(r.Context()), r.URL.Query().Get("role"))
}

// selectRole picks the requested role if the token carries it, the
// first token role when nothing specific was requested, and the empty
// role (which holds no capabilities) for a claim the token cannot back.
func selectRole(roles []string, requested string) core.Role {
	if requested != "" {
		for _, role := range roles {
			if role == requested {
				return core.Role(requested)
			}
		}
		return ""
	}
	if len(roles) > 0 {
		return core.Role(roles[0])
	}
	return ""
}
