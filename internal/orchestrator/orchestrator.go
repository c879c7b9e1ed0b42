// Package orchestrator fans categorization chunks out to the document
// collaborator and gathers the results under an explicit aggregation policy.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"finlight/cashflow-analyzer/internal/config"
	"finlight/cashflow-analyzer/internal/docai"
	"finlight/cashflow-analyzer/internal/logging"
	"finlight/cashflow-analyzer/internal/models"
	"finlight/cashflow-analyzer/internal/pipelineerror"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Options controls timeouts and the failure policy.
type Options struct {
	// Policy is config.PolicyFailFast or config.PolicyPartial.
	Policy       string
	ChunkTimeout time.Duration
	BatchTimeout time.Duration
}

// Orchestrator runs chunk categorization concurrently.
type Orchestrator struct {
	client docai.Client
	logger logging.Logger
	opts   Options
}

// New creates an Orchestrator.
func New(client docai.Client, logger logging.Logger, opts Options) *Orchestrator {
	return &Orchestrator{client: client, logger: logger, opts: opts}
}

// CategorizeAll sends every chunk to the collaborator concurrently. Under
// the fail-fast policy the first chunk failure cancels the remaining chunks
// and is returned as the batch error. Under the partial policy failed chunks
// become warnings and the surviving results are returned, with an error only
// when no chunk succeeds.
func (o *Orchestrator) CategorizeAll(ctx context.Context, chunks [][]models.Transaction, housingReference decimal.Decimal) ([]models.ChunkResult, []string, error) {
	if len(chunks) == 0 {
		return nil, nil, fmt.Errorf("no chunks to categorize")
	}

	ctx, cancel := context.WithTimeout(ctx, o.opts.BatchTimeout)
	defer cancel()

	o.logger.Info("Dispatching categorization chunks",
		logging.Field{Key: logging.FieldChunks, Value: len(chunks)},
		logging.Field{Key: logging.FieldPolicy, Value: o.opts.Policy})

	if o.opts.Policy == config.PolicyFailFast {
		return o.categorizeFailFast(ctx, chunks, housingReference)
	}
	return o.categorizePartial(ctx, chunks, housingReference)
}

func (o *Orchestrator) categorizeFailFast(ctx context.Context, chunks [][]models.Transaction, housingReference decimal.Decimal) ([]models.ChunkResult, []string, error) {
	results := make([]models.ChunkResult, len(chunks))

	group, ctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		group.Go(func() error {
			result, err := o.categorizeChunk(ctx, i, chunk, housingReference)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return results, nil, nil
}

func (o *Orchestrator) categorizePartial(ctx context.Context, chunks [][]models.Transaction, housingReference decimal.Decimal) ([]models.ChunkResult, []string, error) {
	type outcome struct {
		result models.ChunkResult
		err    error
	}
	outcomes := make([]outcome, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []models.Transaction) {
			defer wg.Done()
			result, err := o.categorizeChunk(ctx, i, chunk, housingReference)
			outcomes[i] = outcome{result: result, err: err}
		}(i, chunk)
	}
	wg.Wait()

	var results []models.ChunkResult
	var warnings []string
	for _, out := range outcomes {
		if out.err != nil {
			warnings = append(warnings, out.err.Error())
			continue
		}
		results = append(results, out.result)
	}

	if len(results) == 0 {
		return nil, nil, fmt.Errorf("all %d categorization chunks failed: %s", len(chunks), warnings[0])
	}
	return results, warnings, nil
}

func (o *Orchestrator) categorizeChunk(ctx context.Context, index int, chunk []models.Transaction, housingReference decimal.Decimal) (models.ChunkResult, error) {
	chunkCtx, cancel := context.WithTimeout(ctx, o.opts.ChunkTimeout)
	defer cancel()

	start := time.Now()
	result, err := o.client.CategorizeChunk(chunkCtx, chunk, housingReference)
	if err != nil {
		chunkErr := &pipelineerror.ChunkError{Chunk: index, Err: err}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(chunkCtx.Err(), context.DeadlineExceeded) {
			// Report whichever deadline actually expired.
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				chunkErr.Timeout = o.opts.BatchTimeout
			} else {
				chunkErr.Timeout = o.opts.ChunkTimeout
			}
		}
		o.logger.WithError(err).Warn("Chunk categorization failed",
			logging.Field{Key: logging.FieldChunk, Value: index})
		return models.ChunkResult{}, chunkErr
	}

	o.logger.Debug("Chunk categorized",
		logging.Field{Key: logging.FieldChunk, Value: index},
		logging.Field{Key: logging.FieldCount, Value: len(chunk)},
		logging.Field{Key: "elapsed", Value: time.Since(start).Round(time.Millisecond).String()})

	return result, nil
}
