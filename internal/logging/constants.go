package logging

// Standardized field names for structured logging. Keeping these as constants
// makes the pipeline's log output consistent and easy to filter.
const (
	FieldFile       = "file"
	FieldFileCount  = "file_count"
	FieldChunk      = "chunk"
	FieldChunks     = "chunks"
	FieldCount      = "count"
	FieldMonth      = "month"
	FieldAttempt    = "attempt"
	FieldDuration   = "duration_ms"
	FieldPolicy     = "policy"
	FieldConfidence = "confidence"
	FieldCategory   = "category"
	FieldOperation  = "operation"
	FieldError      = "error"
)
