// Package averaging computes stable per-month cash-flow averages. Boundary
// months with anomalously few transactions usually mean the statement period
// started or ended mid-month; those are excluded from the divisor so the
// averages reflect complete months only.
package averaging

import (
	"finlight/cashflow-analyzer/internal/logging"
	"finlight/cashflow-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

// Engine derives monthly averages from a merged breakdown.
type Engine struct {
	logger logging.Logger

	// PartialMonthRatio scales the mean transaction count to the threshold
	// under which a first or last month counts as partial.
	PartialMonthRatio float64
}

// NewEngine creates an Engine with the given partial-month ratio.
func NewEngine(logger logging.Logger, partialMonthRatio float64) *Engine {
	return &Engine{logger: logger, PartialMonthRatio: partialMonthRatio}
}

// Averages holds the per-month figures for the final analysis.
type Averages struct {
	NumberOfMonths  int
	CompleteMonths  []models.MonthlyBreakdownEntry
	MonthlyDeposits decimal.Decimal
	MonthlyExpenses decimal.Decimal
	MonthlyLeftover decimal.Decimal
}

// Compute filters partial boundary months, then divides the aggregate totals
// by the number of complete months. The divisor never drops to zero: if
// filtering would remove every month the unfiltered breakdown is used.
func (e *Engine) Compute(aggregate models.AggregateAnalysis) Averages {
	complete := e.completeMonths(aggregate.MonthlyBreakdown)

	numberOfMonths := len(complete)
	if numberOfMonths < 1 {
		numberOfMonths = 1
	}
	divisor := decimal.NewFromInt(int64(numberOfMonths))

	return Averages{
		NumberOfMonths:  numberOfMonths,
		CompleteMonths:  complete,
		MonthlyDeposits: aggregate.TotalIncome.Div(divisor),
		MonthlyExpenses: aggregate.TotalExpenses.Div(divisor),
		MonthlyLeftover: aggregate.NetCashFlow.Div(divisor),
	}
}

// completeMonths drops the first and/or last month when its transaction
// count falls under PartialMonthRatio times the mean count. Interior months
// are never dropped; a statement gap in the middle is a data problem, not a
// boundary artifact.
func (e *Engine) completeMonths(breakdown []models.MonthlyBreakdownEntry) []models.MonthlyBreakdownEntry {
	if len(breakdown) <= 1 {
		return breakdown
	}

	total := 0
	for _, entry := range breakdown {
		total += entry.TransactionCount
	}
	threshold := e.PartialMonthRatio * float64(total) / float64(len(breakdown))

	filtered := breakdown
	if float64(filtered[0].TransactionCount) < threshold {
		e.logger.Debug("Excluding partial first month",
			logging.Field{Key: logging.FieldMonth, Value: filtered[0].Month},
			logging.Field{Key: logging.FieldCount, Value: filtered[0].TransactionCount})
		filtered = filtered[1:]
	}
	if len(filtered) > 1 && float64(filtered[len(filtered)-1].TransactionCount) < threshold {
		e.logger.Debug("Excluding partial last month",
			logging.Field{Key: logging.FieldMonth, Value: filtered[len(filtered)-1].Month},
			logging.Field{Key: logging.FieldCount, Value: filtered[len(filtered)-1].TransactionCount})
		filtered = filtered[:len(filtered)-1]
	}

	if len(filtered) == 0 {
		// Never divide by zero, never report zero complete months.
		return breakdown
	}
	return filtered
}
