// Package docai wraps the external document-understanding collaborator. It
// exposes the two call modes the pipeline needs: extracting raw transactions
// from statement files and categorizing pre-extracted transaction chunks.
//
// The collaborator is treated as opaque and possibly unreliable; everything
// it returns crosses a validated schema boundary before reaching the rest of
// the pipeline.
package docai

import (
	"context"

	"finlight/cashflow-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

// Client is the interface to the document-understanding collaborator.
type Client interface {
	// ExtractStatement extracts transactions from a statement file the
	// pipeline cannot read locally (images, scanned PDFs). The returned
	// text is newline-delimited "YYYY-MM-DD | description | ±amount" lines.
	ExtractStatement(ctx context.Context, data []byte, mimeType string) (string, error)

	// CategorizeChunk categorizes one chunk of transactions. The reference
	// housing amount is contextual: payments within ±max($50, 2%) of it
	// should be categorized as housing. The result has passed schema
	// validation when the error is nil.
	CategorizeChunk(ctx context.Context, transactions []models.Transaction, housingReference decimal.Decimal) (models.ChunkResult, error)
}
