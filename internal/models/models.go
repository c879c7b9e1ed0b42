// Package models provides the data structures shared by the statement
// analysis pipeline.
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction categories assigned by the categorization collaborator.
const (
	CategoryIncome    = "income"
	CategoryExpense   = "expense"
	CategoryHousing   = "housing"
	CategoryOneTime   = "one-time"
	CategoryRecurring = "recurring"
)

// validCategories is the closed set of categories accepted at the schema
// boundary.
var validCategories = map[string]bool{
	CategoryIncome:    true,
	CategoryExpense:   true,
	CategoryHousing:   true,
	CategoryOneTime:   true,
	CategoryRecurring: true,
}

// IsValidCategory reports whether name is one of the known categories.
func IsValidCategory(name string) bool {
	return validCategories[name]
}

// Transaction represents a single bank-statement transaction. Amount is
// signed: positive values are inflows, negative values outflows.
type Transaction struct {
	Date           string          `json:"date" csv:"Date"` // ISO date, YYYY-MM-DD
	Description    string          `json:"description" csv:"Description"`
	Amount         decimal.Decimal `json:"amount" csv:"Amount"`
	Category       string          `json:"category" csv:"Category"`
	Flagged        bool            `json:"flagged" csv:"Flagged"`
	FlagReason     string          `json:"flagReason,omitempty" csv:"FlagReason"`
	IsDuplicate    bool            `json:"isDuplicate" csv:"IsDuplicate"`
	DuplicateOfKey string          `json:"duplicateOfKey,omitempty" csv:"DuplicateOfKey"`
	SourceFile     string          `json:"sourceFile,omitempty" csv:"SourceFile"`
}

// IsInflow returns true if the transaction brings money in.
func (t *Transaction) IsInflow() bool {
	return t.Amount.IsPositive()
}

// IsIncome returns true for transactions categorized as income.
func (t *Transaction) IsIncome() bool {
	return t.Category == CategoryIncome
}

// MonthlyBreakdownEntry aggregates one calendar month of activity.
// Month is the unique YYYY-MM key within a breakdown.
type MonthlyBreakdownEntry struct {
	Month            string          `json:"month"`
	Income           decimal.Decimal `json:"income"`
	Expenses         decimal.Decimal `json:"expenses"`
	NetCashFlow      decimal.Decimal `json:"netCashFlow"`
	TransactionCount int             `json:"transactionCount"`
}

// ChunkResult is the categorization collaborator's answer for one chunk of
// transactions. It is validated at the schema boundary before anything
// downstream touches it.
type ChunkResult struct {
	Transactions     []Transaction           `json:"transactions"`
	MonthlyBreakdown []MonthlyBreakdownEntry `json:"monthlyBreakdown"`
	TotalIncome      decimal.Decimal         `json:"totalIncome"`
	TotalExpenses    decimal.Decimal         `json:"totalExpenses"`
	NetCashFlow      decimal.Decimal         `json:"netCashFlow"`
	Confidence       float64                 `json:"confidence"`
}

// AggregateAnalysis is the merged view over all chunk results of a batch.
type AggregateAnalysis struct {
	Transactions     []Transaction           `json:"transactions"`
	MonthlyBreakdown []MonthlyBreakdownEntry `json:"monthlyBreakdown"`
	TotalIncome      decimal.Decimal         `json:"totalIncome"`
	TotalExpenses    decimal.Decimal         `json:"totalExpenses"`
	NetCashFlow      decimal.Decimal         `json:"netCashFlow"`
	Confidence       float64                 `json:"confidence"`

	// DataQuality collects non-fatal anomalies observed while merging,
	// e.g. per-chunk net values that disagree with recomputed totals.
	DataQuality []string `json:"dataQuality,omitempty"`
}

// CashFlowAnalysis is the final output of the pipeline, consumed by the
// loan-simulation calculator.
type CashFlowAnalysis struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetCashFlow   decimal.Decimal `json:"netCashFlow"`

	MonthlyDeposits decimal.Decimal `json:"monthlyDeposits"`
	MonthlyExpenses decimal.Decimal `json:"monthlyExpenses"`
	MonthlyLeftover decimal.Decimal `json:"monthlyLeftover"`
	NumberOfMonths  int             `json:"numberOfMonths"`

	Transactions          []Transaction `json:"transactions"`
	FlaggedTransactions   []Transaction `json:"flaggedTransactions"`
	DuplicateTransactions []Transaction `json:"duplicateTransactions"`

	Confidence float64 `json:"confidence"`

	// Warnings carries non-fatal issues such as statement files that were
	// skipped after exhausting extraction retries, or chunks that failed
	// under the partial aggregation policy.
	Warnings []string `json:"warnings,omitempty"`
}

// FileInput is one uploaded statement file handed to the pipeline.
type FileInput struct {
	Filename  string
	Data      []byte
	Extension string // lower-case, without dot: "csv", "xlsx", "pdf", "png", ...
}

// ParseAmount converts a string amount from a statement row into a decimal,
// tolerating currency symbols, thousand separators and comma decimal points.
// Unparseable input yields decimal.Zero.
func ParseAmount(amountStr string) decimal.Decimal {
	amount := strings.TrimSpace(amountStr)
	for _, sym := range []string{"CHF", "EUR", "USD", "GBP", "$", "€", "£"} {
		amount = strings.ReplaceAll(amount, sym, "")
	}
	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, "'", "")

	// Comma used as decimal separator when no dot is present, otherwise it
	// is a thousand separator.
	if strings.Contains(amount, ",") && !strings.Contains(amount, ".") {
		amount = strings.ReplaceAll(amount, ",", ".")
	} else {
		amount = strings.ReplaceAll(amount, ",", "")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero
	}
	return dec
}
