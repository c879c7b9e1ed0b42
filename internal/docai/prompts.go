package docai

import (
	"encoding/json"
	"fmt"
	"strings"

	"finlight/cashflow-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

const extractionPrompt = `You are a bank statement extraction assistant.
Extract every transaction from the attached document.

Output one transaction per line in exactly this format, nothing else:
YYYY-MM-DD | description | amount

Rules:
- Dates in ISO format (YYYY-MM-DD).
- Amounts as plain decimal numbers: negative for withdrawals and debits,
  positive for deposits and credits. No currency symbols.
- Preserve the original description text.
- Do not summarize, skip, or merge transactions.
- Do not output headers, markdown, or commentary.`

// ExtractionPrompt returns the prompt used when a document is sent to the
// model for transaction extraction.
func ExtractionPrompt() string {
	return extractionPrompt
}

// CategorizationPrompt builds the prompt for categorizing one chunk of
// transactions. housingReference, when positive, anchors housing detection:
// payments within the tolerance band around it should be categorized as
// housing rather than one-time.
func CategorizationPrompt(transactions []models.Transaction, housingReference decimal.Decimal, rules Rules) (string, error) {
	payload, err := json.Marshal(transactions)
	if err != nil {
		return "", fmt.Errorf("could not encode transactions for prompt: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are a cash flow analysis assistant. Categorize the bank transactions below and summarize them by month.\n\n")

	sb.WriteString("Categories:\n")
	for _, c := range rules.Categories {
		fmt.Fprintf(&sb, "- %s: %s\n", c.Name, c.Description)
	}

	if housingReference.IsPositive() {
		tolerance := housingTolerance(housingReference)
		fmt.Fprintf(&sb,
			"\nThe applicant's stated housing payment is %s. Treat outgoing payments within %s of that amount as housing.\n",
			housingReference.StringFixed(2), tolerance.StringFixed(2))
	}

	sb.WriteString(`
Respond with a single JSON object and nothing else. No markdown fences, no commentary. Schema:
{
  "transactions": [{"date": "YYYY-MM-DD", "description": "...", "amount": -12.34, "category": "..."}],
  "monthlyBreakdown": [{"month": "YYYY-MM", "income": 0, "expenses": 0, "netCashFlow": 0, "transactionCount": 0}],
  "totalIncome": 0,
  "totalExpenses": 0,
  "netCashFlow": 0,
  "confidence": 0.0
}

Rules:
- Every input transaction must appear exactly once in the output, with its date, description, and amount unchanged.
- "expenses" and "totalExpenses" are positive magnitudes.
- "confidence" is your confidence in the categorization, between 0 and 1.

Transactions:
`)
	sb.Write(payload)

	return sb.String(), nil
}

// housingTolerance returns the larger of 50 and 2% of the reference amount.
func housingTolerance(reference decimal.Decimal) decimal.Decimal {
	floor := decimal.NewFromInt(50)
	pct := reference.Mul(decimal.NewFromFloat(0.02))
	if pct.GreaterThan(floor) {
		return pct
	}
	return floor
}
