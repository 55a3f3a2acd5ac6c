package api

import (
	"net/http"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api/middleware"
	"github.com/Senpai-Sama7/Astro-sub000/internal/service"
	"github.com/Senpai-Sama7/Astro-sub000/internal/tasks"
)

type Server struct {
	gateway     *service.Gateway
	taskManager *tasks.Manager
}

func NewServer(gateway *service.Gateway, taskManager *tasks.Manager) *Server {
	return &Server{
		gateway:     gateway,
		taskManager: taskManager,
	}
}

func (s *Server) Routes(operatorSigningKey []byte) http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// gate routes, called by the agents themselves
	mux.HandleFunc("POST "+EvaluateRoute, s.handleEvaluate)
	mux.HandleFunc("POST "+OutcomeRoute, s.handleOutcome)
	mux.HandleFunc("POST "+ExplainRoute, s.handleExplain)

	// operator routes
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET "+ListAuditsRoute, s.handleAuditQuery)
	adminMux.HandleFunc("GET "+VerifyLedgerRoute, s.handleAuditVerify)
	adminMux.HandleFunc("GET "+ListApprovalsRoute, s.handleListApprovals)
	adminMux.HandleFunc("POST "+ResolveApprovalRoute, s.handleResolveApproval)
	adminMux.HandleFunc("GET "+PoliciesActionsRoute, s.handleListActions)
	adminMux.HandleFunc("POST "+PoliciesActionsRoute, s.handleRegisterAction)
	adminMux.HandleFunc("POST "+PoliciesRolesRoute, s.handleRegisterRole)
	adminMux.HandleFunc("GET "+ListActorsRoute, s.handleListActors)
	adminMux.HandleFunc("POST "+DeactivateActorRoute, s.handleDeactivateActor)
	adminMux.HandleFunc("POST "+ActorSessionsRoute, s.handleAddActorSession)
	adminMux.HandleFunc("DELETE "+ActorSessionRoute, s.handleDropActorSession)
	adminMux.HandleFunc("GET "+ListTasksRoute, s.handleListTasks)
	adminMux.HandleFunc("POST "+TriggerTaskRoute, s.handleTriggerTask)
	adminMux.HandleFunc("GET "+LogsForTaskRoute, s.handleLogsForTask)
	mux.Handle(AdminParent, middleware.OperatorAuth(operatorSigningKey)(adminMux))

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
