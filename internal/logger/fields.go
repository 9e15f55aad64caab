package logger

// Standard field names for structured logging.
const (
	FieldComponent  = "component"
	FieldJobID      = "job_id"
	FieldDescriptor = "descriptor"
	FieldBackend    = "backend"
	FieldURL        = "url"
	FieldMode       = "mode"
	FieldQuality    = "quality"
	FieldItem       = "item"
	FieldItems      = "items"
	FieldPercent    = "percent"
	FieldState      = "state"
	FieldOutcome    = "outcome"
	FieldKind       = "kind"
	FieldError      = "error"
	FieldPath       = "path"
	FieldDurationMS = "duration_ms"
	FieldBytes      = "bytes"
)
