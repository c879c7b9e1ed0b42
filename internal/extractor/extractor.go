// Package extractor turns uploaded statement files into transactions. CSV
// and XLSX files are parsed locally; PDFs are parsed locally when they carry
// a text layer and sent to the document collaborator otherwise; images
// always go to the collaborator.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"finlight/cashflow-analyzer/internal/docai"
	"finlight/cashflow-analyzer/internal/logging"
	"finlight/cashflow-analyzer/internal/models"
	"finlight/cashflow-analyzer/internal/pipelineerror"
	"finlight/cashflow-analyzer/internal/textutils"
)

// Options bounds retries and per-document-type timeouts.
type Options struct {
	RetryAttempts  int
	RetryDelay     time.Duration
	TabularTimeout time.Duration
	PDFTimeout     time.Duration
	ImageTimeout   time.Duration
}

// Extractor extracts transactions from statement files.
type Extractor struct {
	client docai.Client
	logger logging.Logger
	opts   Options
}

// New creates an Extractor using the given collaborator client.
func New(client docai.Client, logger logging.Logger, opts Options) *Extractor {
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 1
	}
	return &Extractor{client: client, logger: logger, opts: opts}
}

type fileOutcome struct {
	index        int
	transactions []models.Transaction
	err          *pipelineerror.ExtractionError
}

// ExtractAll extracts every file concurrently. A file that fails after all
// retry attempts is skipped with a warning; the error is non-nil only when
// every file fails.
func (e *Extractor) ExtractAll(ctx context.Context, files []models.FileInput) ([]models.Transaction, []string, error) {
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no statement files provided")
	}

	outcomes := make([]fileOutcome, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file models.FileInput) {
			defer wg.Done()
			transactions, err := e.extractWithRetry(ctx, file)
			outcomes[i] = fileOutcome{index: i, transactions: transactions, err: err}
		}(i, file)
	}
	wg.Wait()

	var all []models.Transaction
	var warnings []string
	var failures []*pipelineerror.ExtractionError
	for _, outcome := range outcomes {
		if outcome.err != nil {
			failures = append(failures, outcome.err)
			warnings = append(warnings, fmt.Sprintf("skipped %s: %v", outcome.err.File, outcome.err))
			continue
		}
		all = append(all, outcome.transactions...)
	}

	if len(failures) == len(files) {
		return nil, nil, &pipelineerror.AllFilesFailedError{Failures: failures}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Date < all[j].Date })

	e.logger.Info("Extraction complete",
		logging.Field{Key: logging.FieldCount, Value: len(all)},
		logging.Field{Key: "files", Value: len(files)},
		logging.Field{Key: "failed", Value: len(failures)})

	return all, warnings, nil
}

func (e *Extractor) extractWithRetry(ctx context.Context, file models.FileInput) ([]models.Transaction, *pipelineerror.ExtractionError) {
	var lastErr error
	for attempt := 1; attempt <= e.opts.RetryAttempts; attempt++ {
		transactions, err := e.extractOne(ctx, file)
		if err == nil {
			return transactions, nil
		}
		lastErr = err
		e.logger.WithError(err).Warn("Extraction attempt failed",
			logging.Field{Key: logging.FieldFile, Value: file.Filename},
			logging.Field{Key: logging.FieldAttempt, Value: attempt})

		if attempt < e.opts.RetryAttempts {
			select {
			case <-time.After(e.opts.RetryDelay):
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = e.opts.RetryAttempts
			}
		}
	}
	extractionErr := &pipelineerror.ExtractionError{
		File:     file.Filename,
		Attempts: e.opts.RetryAttempts,
		Err:      lastErr,
	}
	if errors.Is(lastErr, context.DeadlineExceeded) {
		extractionErr.Timeout = e.timeoutFor(file.Extension)
	}
	return nil, extractionErr
}

// timeoutFor returns the per-attempt ceiling that applies to the file's
// document type, mirroring the switch in extractOne.
func (e *Extractor) timeoutFor(extension string) time.Duration {
	switch extension {
	case "csv", "xlsx", "xls":
		return e.opts.TabularTimeout
	case "pdf":
		return e.opts.PDFTimeout
	default:
		return e.opts.ImageTimeout
	}
}

func (e *Extractor) extractOne(ctx context.Context, file models.FileInput) ([]models.Transaction, error) {
	switch file.Extension {
	case "csv":
		ctx, cancel := context.WithTimeout(ctx, e.opts.TabularTimeout)
		defer cancel()
		return e.extractCSV(ctx, file)
	case "xlsx", "xls":
		ctx, cancel := context.WithTimeout(ctx, e.opts.TabularTimeout)
		defer cancel()
		return e.extractXLSX(ctx, file)
	case "pdf":
		ctx, cancel := context.WithTimeout(ctx, e.opts.PDFTimeout)
		defer cancel()
		return e.extractPDF(ctx, file)
	case "png", "jpg", "jpeg", "webp", "heic":
		ctx, cancel := context.WithTimeout(ctx, e.opts.ImageTimeout)
		defer cancel()
		return e.extractViaCollaborator(ctx, file)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", file.Extension)
	}
}

// extractViaCollaborator sends the raw document to the collaborator and
// parses its line-oriented response.
func (e *Extractor) extractViaCollaborator(ctx context.Context, file models.FileInput) ([]models.Transaction, error) {
	text, err := e.client.ExtractStatement(ctx, file.Data, mimeType(file.Extension))
	if err != nil {
		return nil, err
	}

	transactions, skipped := textutils.ParseStatementLines(text, file.Filename)
	if len(skipped) > 0 {
		e.logger.Warn("Collaborator returned unparseable lines",
			logging.Field{Key: logging.FieldFile, Value: file.Filename},
			logging.Field{Key: logging.FieldCount, Value: len(skipped)})
	}
	if len(transactions) == 0 {
		return nil, fmt.Errorf("no transactions recognized in collaborator response")
	}
	return transactions, nil
}

func mimeType(extension string) string {
	switch extension {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
