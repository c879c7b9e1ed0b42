package pipeline

import (
	"fmt"
	"strings"

	"finlight/cashflow-analyzer/internal/docai"
	"finlight/cashflow-analyzer/internal/models"
)

// applyFlagRules marks transactions matching local review heuristics:
// descriptions containing a flag keyword, and amounts at or above the large
// amount threshold. Flags already set by the collaborator are kept.
func applyFlagRules(transactions []models.Transaction, rules docai.Rules) []models.Transaction {
	for i, tx := range transactions {
		if tx.Flagged {
			continue
		}

		description := strings.ToLower(tx.Description)
		for _, keyword := range rules.FlagKeywords {
			if strings.Contains(description, keyword) {
				transactions[i].Flagged = true
				transactions[i].FlagReason = fmt.Sprintf("description matches %q", keyword)
				break
			}
		}
		if transactions[i].Flagged {
			continue
		}

		if threshold := rules.LargeAmount(); threshold.IsPositive() &&
			tx.Amount.Abs().GreaterThanOrEqual(threshold) {
			transactions[i].Flagged = true
			transactions[i].FlagReason = fmt.Sprintf("amount exceeds %s", threshold.StringFixed(2))
		}
	}
	return transactions
}
