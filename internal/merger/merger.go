// Package merger combines the per-chunk categorization results of one batch
// into a single aggregate. Merging is pure and synchronous; it runs only
// after every chunk request has settled.
package merger

import (
	"fmt"
	"sort"

	"finlight/cashflow-analyzer/internal/dateutils"
	"finlight/cashflow-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

// netTolerance is the allowed absolute difference between the summed
// per-chunk net values and the recomputed income-minus-expenses net. A larger
// gap is recorded as a data-quality note, never a hard failure.
var netTolerance = decimal.NewFromFloat(0.01)

// Merge combines chunk results in chunk order: transactions are
// concatenated, monthly breakdowns are summed per month key, totals are
// summed and confidence is averaged.
func Merge(results []models.ChunkResult) models.AggregateAnalysis {
	aggregate := models.AggregateAnalysis{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		NetCashFlow:   decimal.Zero,
	}
	if len(results) == 0 {
		return aggregate
	}

	months := make(map[string]*models.MonthlyBreakdownEntry)
	confidenceSum := 0.0
	reportedNet := decimal.Zero

	for _, result := range results {
		aggregate.Transactions = append(aggregate.Transactions, result.Transactions...)

		for _, entry := range result.MonthlyBreakdown {
			existing, ok := months[entry.Month]
			if !ok {
				copied := entry
				months[entry.Month] = &copied
				continue
			}
			existing.Income = existing.Income.Add(entry.Income)
			existing.Expenses = existing.Expenses.Add(entry.Expenses)
			existing.NetCashFlow = existing.NetCashFlow.Add(entry.NetCashFlow)
			existing.TransactionCount += entry.TransactionCount
		}

		aggregate.TotalIncome = aggregate.TotalIncome.Add(result.TotalIncome)
		aggregate.TotalExpenses = aggregate.TotalExpenses.Add(result.TotalExpenses)
		reportedNet = reportedNet.Add(result.NetCashFlow)
		confidenceSum += result.Confidence
	}

	// Chunks may legitimately omit the breakdown; rebuild it from the
	// transactions themselves so averaging still has month entries.
	if len(months) == 0 {
		months = derivedBreakdown(aggregate.Transactions)
	}

	aggregate.MonthlyBreakdown = sortedBreakdown(months)
	aggregate.Confidence = confidenceSum / float64(len(results))

	// The net is recomputed from the summed totals; a disagreement with
	// the chunks' own net values marks suspect collaborator arithmetic.
	aggregate.NetCashFlow = aggregate.TotalIncome.Sub(aggregate.TotalExpenses)
	if reportedNet.Sub(aggregate.NetCashFlow).Abs().GreaterThan(netTolerance) {
		aggregate.DataQuality = append(aggregate.DataQuality,
			fmt.Sprintf("chunk-reported net cash flow %s disagrees with recomputed %s",
				reportedNet, aggregate.NetCashFlow))
	}

	return aggregate
}

// derivedBreakdown groups transactions by their calendar month.
func derivedBreakdown(transactions []models.Transaction) map[string]*models.MonthlyBreakdownEntry {
	months := make(map[string]*models.MonthlyBreakdownEntry)
	for _, tx := range transactions {
		key := dateutils.MonthKey(tx.Date)
		entry, ok := months[key]
		if !ok {
			entry = &models.MonthlyBreakdownEntry{Month: key}
			months[key] = entry
		}
		if tx.Amount.IsPositive() {
			entry.Income = entry.Income.Add(tx.Amount)
		} else {
			entry.Expenses = entry.Expenses.Add(tx.Amount.Abs())
		}
		entry.NetCashFlow = entry.Income.Sub(entry.Expenses)
		entry.TransactionCount++
	}
	return months
}

func sortedBreakdown(months map[string]*models.MonthlyBreakdownEntry) []models.MonthlyBreakdownEntry {
	breakdown := make([]models.MonthlyBreakdownEntry, 0, len(months))
	for _, entry := range months {
		breakdown = append(breakdown, *entry)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Month < breakdown[j].Month
	})
	return breakdown
}
