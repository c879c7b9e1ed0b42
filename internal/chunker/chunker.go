// Package chunker splits transaction batches into bounded chunks so each
// categorization request stays under the collaborator's output-token ceiling.
package chunker

import (
	"encoding/json"
	"strings"

	"finlight/cashflow-analyzer/internal/logging"
	"finlight/cashflow-analyzer/internal/models"
	"finlight/cashflow-analyzer/internal/textutils"
)

// Planner produces chunk plans for transaction sets and raw text payloads.
type Planner struct {
	logger logging.Logger

	// Threshold is the transaction count above which count-based splitting
	// kicks in; batches at or under it go out as a single chunk.
	Threshold int
	// MaxPerChunk is the window size for count-based splitting.
	MaxPerChunk int
	// TokenCeiling bounds the estimated token size of raw-text chunks.
	TokenCeiling int
}

// NewPlanner creates a Planner with the given bounds.
func NewPlanner(logger logging.Logger, threshold, maxPerChunk, tokenCeiling int) *Planner {
	return &Planner{
		logger:       logger,
		Threshold:    threshold,
		MaxPerChunk:  maxPerChunk,
		TokenCeiling: tokenCeiling,
	}
}

// SplitTransactions splits a batch into contiguous windows of at most
// MaxPerChunk transactions. Batches at or under Threshold are returned as a
// single chunk. Concatenating the chunks in order always reproduces the
// input exactly.
func (p *Planner) SplitTransactions(transactions []models.Transaction) [][]models.Transaction {
	if len(transactions) <= p.Threshold {
		if len(transactions) == 0 {
			return nil
		}
		return [][]models.Transaction{transactions}
	}

	chunks := make([][]models.Transaction, 0, (len(transactions)+p.MaxPerChunk-1)/p.MaxPerChunk)
	for start := 0; start < len(transactions); start += p.MaxPerChunk {
		end := start + p.MaxPerChunk
		if end > len(transactions) {
			end = len(transactions)
		}
		chunks = append(chunks, transactions[start:end])
	}

	chunks = p.enforceTokenCeiling(chunks)

	p.logger.Debug("Split transaction batch into chunks",
		logging.Field{Key: logging.FieldCount, Value: len(transactions)},
		logging.Field{Key: logging.FieldChunks, Value: len(chunks)})

	return chunks
}

// enforceTokenCeiling further subdivides any window whose serialized form
// would blow the token budget, e.g. statements with very long descriptions.
func (p *Planner) enforceTokenCeiling(chunks [][]models.Transaction) [][]models.Transaction {
	out := make([][]models.Transaction, 0, len(chunks))
	for _, chunk := range chunks {
		payload, err := json.Marshal(chunk)
		if err != nil || textutils.EstimateTokens(string(payload)) <= p.TokenCeiling {
			out = append(out, chunk)
			continue
		}

		var subs [][]models.Transaction
		for _, part := range p.SplitText(string(payload)) {
			var sub []models.Transaction
			if err := json.Unmarshal([]byte(part), &sub); err != nil {
				subs = nil
				break
			}
			subs = append(subs, sub)
		}
		if subs == nil {
			out = append(out, chunk)
			continue
		}
		out = append(out, subs...)
	}
	return out
}

// SplitText splits a raw text payload by estimated token budget. If the
// payload parses as a JSON array its elements are regrouped into slices whose
// estimated size stays under TokenCeiling; anything else is returned as a
// single chunk, unsplit.
func (p *Planner) SplitText(payload string) []string {
	if textutils.EstimateTokens(payload) <= p.TokenCeiling {
		return []string{payload}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &elements); err != nil || len(elements) == 0 {
		// Not a parseable array: no partial chunking is attempted.
		p.logger.Debug("Oversized payload is not a JSON array, passing through unchunked",
			logging.Field{Key: "estimated_tokens", Value: textutils.EstimateTokens(payload)})
		return []string{payload}
	}

	avgTokens := textutils.EstimateTokens(payload) / len(elements)
	if avgTokens < 1 {
		avgTokens = 1
	}
	perChunk := p.TokenCeiling / avgTokens
	if perChunk < 1 {
		perChunk = 1
	}

	chunks := make([]string, 0, (len(elements)+perChunk-1)/perChunk)
	for start := 0; start < len(elements); start += perChunk {
		end := start + perChunk
		if end > len(elements) {
			end = len(elements)
		}
		part, err := json.Marshal(elements[start:end])
		if err != nil {
			return []string{payload}
		}
		chunks = append(chunks, string(part))
	}

	p.logger.Debug("Split raw payload into token-bounded chunks",
		logging.Field{Key: "elements", Value: len(elements)},
		logging.Field{Key: logging.FieldChunks, Value: len(chunks)})

	return chunks
}
