package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/icanhazastrogate"

	EvaluateRoute = "/v1/gate/evaluate"
	OutcomeRoute  = "/v1/gate/outcome"
	ExplainRoute  = "/v1/gate/explain"

	AdminParent = "/v1/admin/"

	ListAuditsRoute   = AdminParent + "audit/entries"
	VerifyLedgerRoute = AdminParent + "audit/verify"

	ListApprovalsRoute   = AdminParent + "approvals"
	ResolveApprovalRoute = AdminParent + "approvals/{id}/resolve"

	PoliciesActionsRoute = AdminParent + "policies/actions"
	PoliciesRolesRoute   = AdminParent + "policies/roles"

	ListActorsRoute      = AdminParent + "actors"
	DeactivateActorRoute = AdminParent + "actors/{id}/deactivate"
	ActorSessionsRoute   = AdminParent + "actors/{id}/sessions"
	ActorSessionRoute    = AdminParent + "actors/{id}/sessions/{session}"

	TaskParent       = AdminParent + "tasks/"
	ListTasksRoute   = TaskParent
	TriggerTaskRoute = TaskParent + "{name}/trigger"
	LogsForTaskRoute = TaskParent + "{name}/logs"
)
