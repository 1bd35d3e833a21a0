package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldBackend    = "backend"
	FieldExpenseID  = "expense_id"
	FieldName       = "name"
	FieldAmount     = "amount"
	FieldCategory   = "category"
	FieldRange      = "range"
	FieldSlot       = "slot"
	FieldCount      = "count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentRemote  = "remote"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentBackend = "backend"
	ComponentSession = "session"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpInsights = "insights"
	OpExport   = "export"
	OpImport   = "import"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
