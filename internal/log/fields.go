package log

// Field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldPlanID     = "plan_id"
	FieldPlanName   = "plan_name"
	FieldStrategy   = "strategy"
	FieldDebtCount  = "debt_count"
	FieldPayment    = "monthly_payment"
	FieldMonths     = "months_to_payoff"
	FieldCapped     = "capped"
	FieldInterest   = "total_interest"
	FieldAlertCount = "alert_count"
	FieldCacheHit   = "cache_hit"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentPlanner   = "planner"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentCLI       = "cli"
)

const (
	OpCreate   = "create"
	OpRead     = "read"
	OpList     = "list"
	OpSimulate = "simulate"
	OpCompare  = "compare"
	OpImpact   = "spending_impact"
	OpSuggest  = "suggest_payment"
	OpAlerts   = "alerts"
	OpScan     = "scan"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Fields builds key/value pairs for slog calls.
type Fields map[string]any

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) WithComponent(component string) Fields {
	f[FieldComponent] = component
	return f
}

func (f Fields) WithRequestID(requestID string) Fields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

func (f Fields) WithClientIP(ip string) Fields {
	f[FieldClientIP] = ip
	return f
}

func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

func (f Fields) WithPlan(id, name string, debts int) Fields {
	f[FieldPlanID] = id
	if name != "" {
		f[FieldPlanName] = name
	}
	f[FieldDebtCount] = debts
	return f
}

// WithSimulation records the headline numbers of a payoff run.
func (f Fields) WithSimulation(strategy string, months int, capped bool, interest string) Fields {
	f[FieldStrategy] = strategy
	f[FieldMonths] = months
	f[FieldCapped] = capped
	f[FieldInterest] = interest
	return f
}

func (f Fields) WithHTTPRequest(method, path, query, userAgent string) Fields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f Fields) WithHTTPResponse(statusCode int, durationMs int64) Fields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice flattens f for slog.
func (f Fields) ToSlice() []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}
