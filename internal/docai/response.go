package docai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"finlight/cashflow-analyzer/internal/dateutils"
	"finlight/cashflow-analyzer/internal/models"
	"finlight/cashflow-analyzer/internal/pipelineerror"

	"github.com/shopspring/decimal"
)

var (
	fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	monthKey    = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// ExtractJSON recovers a JSON document from collaborator output that may be
// wrapped in formatting artifacts. Recovery is three-step: use the payload
// as-is when it parses directly, otherwise look for a fenced code block,
// otherwise take the region between the first '{' and the last '}'. Only
// when all three fail is the payload declared unparseable.
func ExtractJSON(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	if matches := fencedBlock.FindStringSubmatch(trimmed); matches != nil {
		candidate := strings.TrimSpace(matches[1])
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	if start := strings.Index(trimmed, "{"); start != -1 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			candidate := trimmed[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, nil
			}
		}
	}

	return "", &pipelineerror.ResponseParseError{
		Snippet: snippet(trimmed),
		Err:     fmt.Errorf("no parseable JSON found"),
	}
}

func snippet(s string) string {
	if len(s) > 60 {
		return s[:60]
	}
	return s
}

// wire types decode the collaborator's JSON with pointer fields so missing
// keys are distinguishable from zero values.

type wireChunkResult struct {
	Transactions     []wireTransaction `json:"transactions"`
	MonthlyBreakdown []wireMonth       `json:"monthlyBreakdown"`
	TotalIncome      *decimal.Decimal  `json:"totalIncome"`
	TotalExpenses    *decimal.Decimal  `json:"totalExpenses"`
	NetCashFlow      *decimal.Decimal  `json:"netCashFlow"`
	Confidence       *float64          `json:"confidence"`
}

type wireTransaction struct {
	Date        *string          `json:"date"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Flagged     bool             `json:"flagged"`
	FlagReason  string           `json:"flagReason"`
}

type wireMonth struct {
	Month            *string          `json:"month"`
	Income           *decimal.Decimal `json:"income"`
	Expenses         *decimal.Decimal `json:"expenses"`
	NetCashFlow      *decimal.Decimal `json:"netCashFlow"`
	TransactionCount *int             `json:"transactionCount"`
}

// DecodeChunkResult parses and validates a collaborator categorization
// response. Formatting artifacts are stripped first; any missing or mistyped
// field yields a SchemaError naming the offending field.
func DecodeChunkResult(raw string) (models.ChunkResult, error) {
	clean, err := ExtractJSON(raw)
	if err != nil {
		return models.ChunkResult{}, err
	}

	var wire wireChunkResult
	if err := json.Unmarshal([]byte(clean), &wire); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return models.ChunkResult{}, &pipelineerror.SchemaError{
				Field:  typeErr.Field,
				Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			}
		}
		return models.ChunkResult{}, &pipelineerror.ResponseParseError{Snippet: snippet(clean), Err: err}
	}

	result := models.ChunkResult{}

	if wire.Transactions == nil {
		return models.ChunkResult{}, &pipelineerror.SchemaError{Field: "transactions", Reason: "missing"}
	}
	for i, tx := range wire.Transactions {
		converted, err := convertTransaction(i, tx)
		if err != nil {
			return models.ChunkResult{}, err
		}
		result.Transactions = append(result.Transactions, converted)
	}

	for i, month := range wire.MonthlyBreakdown {
		converted, err := convertMonth(i, month)
		if err != nil {
			return models.ChunkResult{}, err
		}
		result.MonthlyBreakdown = append(result.MonthlyBreakdown, converted)
	}

	if wire.TotalIncome == nil || wire.TotalExpenses == nil || wire.NetCashFlow == nil {
		return models.ChunkResult{}, &pipelineerror.SchemaError{Field: "totals", Reason: "missing totalIncome/totalExpenses/netCashFlow"}
	}
	result.TotalIncome = *wire.TotalIncome
	result.TotalExpenses = *wire.TotalExpenses
	result.NetCashFlow = *wire.NetCashFlow

	if wire.Confidence == nil {
		return models.ChunkResult{}, &pipelineerror.SchemaError{Field: "confidence", Reason: "missing"}
	}
	confidence := *wire.Confidence
	if confidence < 0 || confidence > 1 {
		return models.ChunkResult{}, &pipelineerror.SchemaError{
			Field:  "confidence",
			Reason: fmt.Sprintf("out of range [0,1]: %g", confidence),
		}
	}
	result.Confidence = confidence

	return result, nil
}

func convertTransaction(index int, tx wireTransaction) (models.Transaction, error) {
	field := func(name string) string { return fmt.Sprintf("transactions[%d].%s", index, name) }

	if tx.Date == nil {
		return models.Transaction{}, &pipelineerror.SchemaError{Field: field("date"), Reason: "missing"}
	}
	if _, err := dateutils.ParseDate(*tx.Date); err != nil {
		return models.Transaction{}, &pipelineerror.SchemaError{Field: field("date"), Reason: "not a calendar date"}
	}
	if tx.Description == nil {
		return models.Transaction{}, &pipelineerror.SchemaError{Field: field("description"), Reason: "missing"}
	}
	if tx.Amount == nil {
		return models.Transaction{}, &pipelineerror.SchemaError{Field: field("amount"), Reason: "missing"}
	}
	if tx.Category == nil {
		return models.Transaction{}, &pipelineerror.SchemaError{Field: field("category"), Reason: "missing"}
	}
	if !models.IsValidCategory(*tx.Category) {
		return models.Transaction{}, &pipelineerror.SchemaError{
			Field:  field("category"),
			Reason: fmt.Sprintf("unknown category %q", *tx.Category),
		}
	}

	return models.Transaction{
		Date:        dateutils.ToISODate(*tx.Date),
		Description: *tx.Description,
		Amount:      *tx.Amount,
		Category:    *tx.Category,
		Flagged:     tx.Flagged,
		FlagReason:  tx.FlagReason,
	}, nil
}

func convertMonth(index int, month wireMonth) (models.MonthlyBreakdownEntry, error) {
	field := func(name string) string { return fmt.Sprintf("monthlyBreakdown[%d].%s", index, name) }

	if month.Month == nil {
		return models.MonthlyBreakdownEntry{}, &pipelineerror.SchemaError{Field: field("month"), Reason: "missing"}
	}
	if !monthKey.MatchString(*month.Month) {
		return models.MonthlyBreakdownEntry{}, &pipelineerror.SchemaError{Field: field("month"), Reason: "not a YYYY-MM key"}
	}
	if month.Income == nil || month.Expenses == nil || month.NetCashFlow == nil {
		return models.MonthlyBreakdownEntry{}, &pipelineerror.SchemaError{Field: field("income"), Reason: "missing monetary fields"}
	}
	if month.TransactionCount == nil {
		return models.MonthlyBreakdownEntry{}, &pipelineerror.SchemaError{Field: field("transactionCount"), Reason: "missing"}
	}

	return models.MonthlyBreakdownEntry{
		Month:            *month.Month,
		Income:           *month.Income,
		Expenses:         *month.Expenses,
		NetCashFlow:      *month.NetCashFlow,
		TransactionCount: *month.TransactionCount,
	}, nil
}
