package merger

import (
	"testing"

	"finlight/cashflow-analyzer/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func TestMergeTotalsAndConfidence(t *testing.T) {
	results := []models.ChunkResult{
		{TotalIncome: dec(1000), TotalExpenses: dec(300), NetCashFlow: dec(700), Confidence: 0.9},
		{TotalIncome: dec(500), TotalExpenses: dec(100), NetCashFlow: dec(400), Confidence: 0.7},
	}

	aggregate := Merge(results)

	assert.True(t, aggregate.TotalIncome.Equal(dec(1500)))
	assert.True(t, aggregate.TotalExpenses.Equal(dec(400)))
	assert.True(t, aggregate.NetCashFlow.Equal(dec(1100)))
	assert.InDelta(t, 0.8, aggregate.Confidence, 1e-9)
	assert.Empty(t, aggregate.DataQuality)
}

func TestMergeConcatenatesTransactionsInChunkOrder(t *testing.T) {
	results := []models.ChunkResult{
		{Transactions: []models.Transaction{{Description: "a"}, {Description: "b"}}},
		{Transactions: []models.Transaction{{Description: "c"}}},
	}

	aggregate := Merge(results)

	require.Len(t, aggregate.Transactions, 3)
	assert.Equal(t, "a", aggregate.Transactions[0].Description)
	assert.Equal(t, "b", aggregate.Transactions[1].Description)
	assert.Equal(t, "c", aggregate.Transactions[2].Description)
}

func TestMergeSumsMonthlyBreakdownPerKey(t *testing.T) {
	results := []models.ChunkResult{
		{MonthlyBreakdown: []models.MonthlyBreakdownEntry{
			{Month: "2024-02", Income: dec(100), Expenses: dec(40), NetCashFlow: dec(60), TransactionCount: 4},
			{Month: "2024-01", Income: dec(50), Expenses: dec(20), NetCashFlow: dec(30), TransactionCount: 2},
		}},
		{MonthlyBreakdown: []models.MonthlyBreakdownEntry{
			{Month: "2024-02", Income: dec(200), Expenses: dec(60), NetCashFlow: dec(140), TransactionCount: 6},
		}},
	}

	aggregate := Merge(results)

	require.Len(t, aggregate.MonthlyBreakdown, 2)
	// sorted ascending by month key
	assert.Equal(t, "2024-01", aggregate.MonthlyBreakdown[0].Month)
	assert.Equal(t, "2024-02", aggregate.MonthlyBreakdown[1].Month)

	feb := aggregate.MonthlyBreakdown[1]
	assert.True(t, feb.Income.Equal(dec(300)))
	assert.True(t, feb.Expenses.Equal(dec(100)))
	assert.True(t, feb.NetCashFlow.Equal(dec(200)))
	assert.Equal(t, 10, feb.TransactionCount)
}

func TestMergeFlagsNetDisagreement(t *testing.T) {
	results := []models.ChunkResult{
		{TotalIncome: dec(1000), TotalExpenses: dec(300), NetCashFlow: dec(500), Confidence: 0.9},
	}

	aggregate := Merge(results)

	// Recomputed net wins; the disagreement is a data-quality note.
	assert.True(t, aggregate.NetCashFlow.Equal(dec(700)))
	require.Len(t, aggregate.DataQuality, 1)
	assert.Contains(t, aggregate.DataQuality[0], "disagrees")
}

func TestMergeDerivesBreakdownFromTransactions(t *testing.T) {
	results := []models.ChunkResult{
		{
			Transactions: []models.Transaction{
				{Date: "2024-01-02", Description: "Payroll", Amount: dec(3000), Category: models.CategoryIncome},
				{Date: "2024-01-10", Description: "Rent", Amount: dec(-1200), Category: models.CategoryHousing},
				{Date: "2024-02-02", Description: "Payroll", Amount: dec(3000), Category: models.CategoryIncome},
			},
			TotalIncome:   dec(6000),
			TotalExpenses: dec(1200),
			NetCashFlow:   dec(4800),
			Confidence:    0.8,
		},
	}

	aggregate := Merge(results)

	require.Len(t, aggregate.MonthlyBreakdown, 2)
	jan := aggregate.MonthlyBreakdown[0]
	assert.Equal(t, "2024-01", jan.Month)
	assert.True(t, jan.Income.Equal(dec(3000)))
	assert.True(t, jan.Expenses.Equal(dec(1200)))
	assert.True(t, jan.NetCashFlow.Equal(dec(1800)))
	assert.Equal(t, 2, jan.TransactionCount)
	assert.Equal(t, "2024-02", aggregate.MonthlyBreakdown[1].Month)
}

func TestMergeEmpty(t *testing.T) {
	aggregate := Merge(nil)
	assert.Empty(t, aggregate.Transactions)
	assert.True(t, aggregate.TotalIncome.IsZero())
	assert.Zero(t, aggregate.Confidence)
}
