package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldCard        = "card"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldRange       = "range"
	FieldSymbol      = "symbol"
	FieldBackend     = "backend"
	FieldPath        = "path"
	FieldRows        = "rows"
	FieldSkipped     = "rows_skipped"
	FieldReport      = "report"
	FieldQueue       = "queue"
	FieldExchange    = "exchange"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentSource   = "source"
	ComponentStorage  = "storage"
	ComponentMarket   = "market"
	ComponentReport   = "report"
	ComponentSink     = "report_sink"
	ComponentServices = "services"
	ComponentViews    = "views"
	ComponentSettings = "settings"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
)

// Operations defines standard operation names
const (
	OpLoad      = "load"
	OpIngest    = "ingest"
	OpAggregate = "aggregate"
	OpSearch    = "search"
	OpAssemble  = "assemble"
	OpQuote     = "quote"
	OpWrite     = "write"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
