package logger

// Standard field names for structured log lines.
const (
	FieldFile       = "file"
	FieldPath       = "path"
	FieldOutput     = "output"
	FieldTemplate   = "template"
	FieldCount      = "count"
	FieldError      = "error"
	FieldDurationMS = "duration_ms"
	FieldBuildID    = "build_id"
)
