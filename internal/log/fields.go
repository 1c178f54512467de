package log

// Attribute keys shared by every component.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldEventID     = "event_id"
	FieldGoalID      = "goal_id"
	FieldTitle       = "title"
	FieldCategory    = "category"
	FieldRecurring   = "recurring"
	FieldAmountCents = "amount_cents"
	FieldEvents      = "events"
	FieldOccurrences = "occurrences"
	FieldRiskDays    = "risk_days"
	FieldWarnings    = "warnings"
	FieldCacheHit    = "cache_hit"
	FieldReason      = "reason"
)

const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentEvents     = "events"
	ComponentGoals      = "goals"
	ComponentProjection = "projection"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentNotify     = "notify"
	ComponentBackend    = "backend"
)

const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpProject = "project"
	OpSweep   = "sweep"
)
