package pipelineerror

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractionErrorWrapping(t *testing.T) {
	cause := errors.New("unreadable content")
	err := &ExtractionError{File: "jan.pdf", Attempts: 2, Err: cause}

	assert.Contains(t, err.Error(), "jan.pdf")
	assert.Contains(t, err.Error(), "2 attempts")
	assert.True(t, errors.Is(err, cause))
}

func TestExtractionErrorTimeoutWording(t *testing.T) {
	err := &ExtractionError{File: "scan.png", Attempts: 2, Timeout: 120 * time.Second, Err: errors.New("context deadline exceeded")}
	assert.True(t, err.IsTimeout())
	assert.Contains(t, err.Error(), "timed out after 120s")
	assert.Contains(t, err.Error(), "scan.png")

	dataErr := &ExtractionError{File: "jan.csv", Attempts: 2, Err: errors.New("bad header")}
	assert.False(t, dataErr.IsTimeout())
}

func TestAllFilesFailedErrorNamesEveryFile(t *testing.T) {
	err := &AllFilesFailedError{Failures: []*ExtractionError{
		{File: "jan.pdf", Attempts: 2, Err: errors.New("timeout")},
		{File: "feb.csv", Attempts: 2, Err: errors.New("bad header")},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "jan.pdf")
	assert.Contains(t, msg, "feb.csv")
}

func TestChunkErrorTimeoutWording(t *testing.T) {
	timeoutErr := &ChunkError{Chunk: 3, Timeout: 45 * time.Second, Err: errors.New("context deadline exceeded")}
	assert.True(t, timeoutErr.IsTimeout())
	assert.Contains(t, timeoutErr.Error(), "timed out after 45s")

	dataErr := &ChunkError{Chunk: 1, Err: errors.New("bad json")}
	assert.False(t, dataErr.IsTimeout())
	assert.NotContains(t, dataErr.Error(), "timed out")
}

func TestSchemaError(t *testing.T) {
	err := &SchemaError{Field: "confidence", Reason: "expected number, got string"}
	assert.Contains(t, err.Error(), "confidence")
	assert.Contains(t, err.Error(), "expected number")
}
