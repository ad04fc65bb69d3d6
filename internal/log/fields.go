package log

// Field name constants keep log output greppable across components.
const (
	FieldEntryID     = "entry_id"
	FieldEntryType   = "entry_type"
	FieldAmountCents = "amount_cents"
	FieldDescription = "description"
	FieldOperation   = "operation"
	FieldComponent   = "component"
	FieldBackend     = "backend"
	FieldError       = "error"

	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"

	ComponentHTTP   = "http"
	ComponentLedger = "ledger"
	ComponentWorker = "worker"
)

// LogFields builds a slice of alternating key/value pairs for slog.
type LogFields []any

func NewFields() LogFields {
	return LogFields{}
}

// WithEntry adds the identifying fields of a ledger entry.
func (f LogFields) WithEntry(id int64, entryType string, amountCents int64, description string) LogFields {
	return append(f,
		FieldEntryID, id,
		FieldEntryType, entryType,
		FieldAmountCents, amountCents,
		FieldDescription, description)
}

func (f LogFields) WithOperation(op string) LogFields {
	return append(f, FieldOperation, op)
}

func (f LogFields) WithBackend(backend string) LogFields {
	return append(f, FieldBackend, backend)
}

func (f LogFields) WithError(err error) LogFields {
	if err == nil {
		return f
	}
	return append(f, FieldError, err.Error())
}

func (f LogFields) ToSlice() []any {
	return []any(f)
}
