// Package pipelineerror defines the typed errors surfaced by the statement
// analysis pipeline. Callers can distinguish transient timeout failures from
// data and schema failures by inspecting these types.
package pipelineerror

import (
	"fmt"
	"strings"
	"time"
)

// ExtractionError represents a failure to extract transactions from one
// statement file after all retry attempts were exhausted.
type ExtractionError struct {
	File     string
	Attempts int
	Timeout  time.Duration // non-zero when the last attempt hit its deadline
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("extraction of %s timed out after %gs (%d attempts)",
			e.File, e.Timeout.Seconds(), e.Attempts)
	}
	return fmt.Sprintf("extraction failed for %s after %d attempts: %v",
		e.File, e.Attempts, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether the file failed on its deadline rather than on
// a data problem.
func (e *ExtractionError) IsTimeout() bool {
	return e.Timeout > 0
}

// AllFilesFailedError is raised when no uploaded file could be extracted.
// It carries every per-file failure so the caller can report them all at
// once, timeout wording included.
type AllFilesFailedError struct {
	Failures []*ExtractionError
}

func (e *AllFilesFailedError) Error() string {
	messages := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		messages[i] = f.Error()
	}
	return fmt.Sprintf("all %d statement files failed extraction: %s",
		len(e.Failures), strings.Join(messages, "; "))
}

// ChunkError represents a failed categorization call for one chunk.
// Chunk indexes are zero-based.
type ChunkError struct {
	Chunk   int
	Timeout time.Duration // non-zero when the call was cut off by its deadline
	Err     error
}

func (e *ChunkError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("chunk %d timed out after %gs", e.Chunk, e.Timeout.Seconds())
	}
	return fmt.Sprintf("chunk %d categorization failed: %v", e.Chunk, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether the chunk failed on its deadline rather than on
// a data or schema problem.
func (e *ChunkError) IsTimeout() bool {
	return e.Timeout > 0
}

// SchemaError represents collaborator output that parsed as JSON but did not
// match the expected ChunkResult shape.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Field, e.Reason)
}

// ResponseParseError represents collaborator output that could not be parsed
// as JSON even after fallback extraction attempts.
type ResponseParseError struct {
	Snippet string
	Err     error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("unparseable collaborator response (%q...): %v", e.Snippet, e.Err)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}
