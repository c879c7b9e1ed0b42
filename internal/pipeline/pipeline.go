// Package pipeline wires the full cash flow analysis: extraction, chunk
// planning, categorization, merging, deduplication, monthly averaging and
// confidence scoring.
package pipeline

import (
	"context"
	"time"

	"finlight/cashflow-analyzer/internal/averaging"
	"finlight/cashflow-analyzer/internal/chunker"
	"finlight/cashflow-analyzer/internal/config"
	"finlight/cashflow-analyzer/internal/dedup"
	"finlight/cashflow-analyzer/internal/docai"
	"finlight/cashflow-analyzer/internal/extractor"
	"finlight/cashflow-analyzer/internal/logging"
	"finlight/cashflow-analyzer/internal/merger"
	"finlight/cashflow-analyzer/internal/models"
	"finlight/cashflow-analyzer/internal/orchestrator"
	"finlight/cashflow-analyzer/internal/scoring"

	"github.com/shopspring/decimal"
)

// Analyzer runs the end-to-end cash flow analysis for one batch of
// statement files.
type Analyzer struct {
	extractor    *extractor.Extractor
	planner      *chunker.Planner
	orchestrator *orchestrator.Orchestrator
	averager     *averaging.Engine
	scorer       *scoring.Scorer
	rules        docai.Rules
	logger       logging.Logger
}

// NewAnalyzer assembles the pipeline from configuration.
func NewAnalyzer(client docai.Client, logger logging.Logger, cfg *config.Config, rules docai.Rules) *Analyzer {
	ext := extractor.New(client, logger, extractor.Options{
		RetryAttempts:  cfg.Extraction.RetryAttempts,
		RetryDelay:     time.Duration(cfg.Extraction.RetryDelaySeconds) * time.Second,
		TabularTimeout: time.Duration(cfg.Extraction.TabularTimeoutSecs) * time.Second,
		PDFTimeout:     time.Duration(cfg.Extraction.PDFTimeoutSeconds) * time.Second,
		ImageTimeout:   time.Duration(cfg.Extraction.ImageTimeoutSeconds) * time.Second,
	})

	planner := chunker.NewPlanner(logger, cfg.Chunking.Threshold, cfg.Chunking.MaxPerChunk, cfg.Chunking.TokenCeiling)

	orch := orchestrator.New(client, logger, orchestrator.Options{
		Policy:       cfg.Analysis.Policy,
		ChunkTimeout: time.Duration(cfg.Analysis.ChunkTimeoutSeconds) * time.Second,
		BatchTimeout: time.Duration(cfg.Analysis.BatchTimeoutSeconds) * time.Second,
	})

	scorer := scoring.NewScorer(scoring.Weights{
		AI:     cfg.Confidence.WeightAI,
		Volume: cfg.Confidence.WeightVolume,
		Flags:  cfg.Confidence.WeightFlags,
		Months: cfg.Confidence.WeightMonths,
		Income: cfg.Confidence.WeightIncome,
	}, cfg.Confidence.Floor, cfg.Confidence.Ceiling)

	return &Analyzer{
		extractor:    ext,
		planner:      planner,
		orchestrator: orch,
		averager:     averaging.NewEngine(logger, cfg.Averaging.PartialMonthRatio),
		scorer:       scorer,
		rules:        rules,
		logger:       logger,
	}
}

// Analyze runs the pipeline over the uploaded statement files.
// housingReference, when positive, is the applicant's stated housing payment
// and anchors housing categorization.
func (a *Analyzer) Analyze(ctx context.Context, files []models.FileInput, housingReference decimal.Decimal) (*models.CashFlowAnalysis, error) {
	transactions, extractWarnings, err := a.extractor.ExtractAll(ctx, files)
	if err != nil {
		return nil, err
	}

	chunks := a.planner.SplitTransactions(transactions)

	results, chunkWarnings, err := a.orchestrator.CategorizeAll(ctx, chunks, housingReference)
	if err != nil {
		return nil, err
	}

	aggregate := merger.Merge(results)
	aggregate.Transactions = applyFlagRules(aggregate.Transactions, a.rules)

	deduped := dedup.Deduplicate(aggregate.Transactions)
	averages := a.averager.Compute(aggregate)

	flagged := flaggedTransactions(deduped.Unique)
	confidence := a.scorer.Score(aggregate.Confidence, deduped.Unique, flagged, len(aggregate.MonthlyBreakdown))

	var warnings []string
	warnings = append(warnings, extractWarnings...)
	warnings = append(warnings, chunkWarnings...)
	warnings = append(warnings, aggregate.DataQuality...)

	analysis := &models.CashFlowAnalysis{
		TotalIncome:           aggregate.TotalIncome,
		TotalExpenses:         aggregate.TotalExpenses,
		NetCashFlow:           aggregate.NetCashFlow,
		MonthlyDeposits:       averages.MonthlyDeposits,
		MonthlyExpenses:       averages.MonthlyExpenses,
		MonthlyLeftover:       averages.MonthlyLeftover,
		NumberOfMonths:        averages.NumberOfMonths,
		Transactions:          deduped.Unique,
		FlaggedTransactions:   flagged,
		DuplicateTransactions: deduped.Duplicates,
		Confidence:            confidence,
		Warnings:              warnings,
	}

	a.logger.Info("Analysis complete",
		logging.Field{Key: logging.FieldCount, Value: len(deduped.Unique)},
		logging.Field{Key: "duplicates", Value: len(deduped.Duplicates)},
		logging.Field{Key: "flagged", Value: len(flagged)},
		logging.Field{Key: "months", Value: averages.NumberOfMonths},
		logging.Field{Key: "confidence", Value: confidence})

	return analysis, nil
}

func flaggedTransactions(transactions []models.Transaction) []models.Transaction {
	var flagged []models.Transaction
	for _, tx := range transactions {
		if tx.Flagged {
			flagged = append(flagged, tx)
		}
	}
	return flagged
}
