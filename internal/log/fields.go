package log

// Field names shared by every component.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldSessionID  = "session_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldRecordKind = "record_kind"
	FieldRecordID   = "record_id"
	FieldAmount     = "amount"
	FieldCategory   = "category"
	FieldSource     = "source"
	FieldDate       = "date"
	FieldDelta      = "delta"
	FieldExpenses   = "expenses"
	FieldIncome     = "income"
	FieldCategories = "categories"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAPI       = "api"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
)

const (
	OpCreate   = "create"
	OpList     = "list"
	OpSummary  = "summary"
	OpDelete   = "delete"
	OpRefresh  = "refresh"
	OpNavigate = "navigate"
	OpPublish  = "publish"
)

const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields builds attribute lists for slog.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithPeriod adds the year and month a ledger operation refers to.
func (f LogFields) WithPeriod(year, month int) LogFields {
	f[FieldYear] = year
	f[FieldMonth] = month
	return f
}

// WithRecord adds the kind ("expense" or "income") and id of a record.
func (f LogFields) WithRecord(kind string, id int64) LogFields {
	f[FieldRecordKind] = kind
	if id > 0 {
		f[FieldRecordID] = id
	}
	return f
}

// WithExpense adds the category, amount and date of an expense.
func (f LogFields) WithExpense(category, amount, date string) LogFields {
	f[FieldCategory] = category
	f[FieldAmount] = amount
	if date != "" {
		f[FieldDate] = date
	}
	return f
}

// WithIncome adds the source, amount and date of an income record.
func (f LogFields) WithIncome(source, amount, date string) LogFields {
	f[FieldSource] = source
	f[FieldAmount] = amount
	if date != "" {
		f[FieldDate] = date
	}
	return f
}

// WithDelta adds a month navigation offset.
func (f LogFields) WithDelta(delta int) LogFields {
	f[FieldDelta] = delta
	return f
}

// WithMonthData adds the sizes of a loaded month.
func (f LogFields) WithMonthData(expenses, income, categories int) LogFields {
	f[FieldExpenses] = expenses
	f[FieldIncome] = income
	f[FieldCategories] = categories
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
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

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to slog key/value pairs.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
