// Package dedup removes transactions that appear in more than one uploaded
// statement, e.g. when overlapping statement periods are uploaded twice.
package dedup

import (
	"fmt"
	"strings"
	"unicode"

	"finlight/cashflow-analyzer/internal/dateutils"
	"finlight/cashflow-analyzer/internal/models"
)

// maxDescriptionKeyLen bounds the normalized description inside a dedup key.
const maxDescriptionKeyLen = 50

// Key derives the deduplication fingerprint of a transaction. It is a pure
// function of transaction content: the date normalized to YYYY-MM-DD, the
// absolute amount rounded to two decimals, and the description lowered to
// alphanumerics and spaces, truncated to 50 characters.
func Key(tx models.Transaction) string {
	return fmt.Sprintf("%s|%s|%s",
		dateutils.ToISODate(tx.Date),
		tx.Amount.Abs().Round(2).StringFixed(2),
		normalizeDescription(tx.Description))
}

func normalizeDescription(description string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(description) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	normalized := strings.Join(strings.Fields(b.String()), " ")
	if runes := []rune(normalized); len(runes) > maxDescriptionKeyLen {
		normalized = string(runes[:maxDescriptionKeyLen])
	}
	return normalized
}

// Result holds the outcome of one deduplication pass.
type Result struct {
	Unique     []models.Transaction
	Duplicates []models.Transaction
}

// Deduplicate walks the merged transaction list left to right, keeping the
// first occurrence of each key. Later occurrences are marked IsDuplicate
// with DuplicateOfKey set and routed to the duplicates list. Input order is
// preserved in both lists; O(n) time, O(n) auxiliary space.
func Deduplicate(transactions []models.Transaction) Result {
	seen := make(map[string]struct{}, len(transactions))
	result := Result{Unique: make([]models.Transaction, 0, len(transactions))}

	for _, tx := range transactions {
		key := Key(tx)
		if _, dup := seen[key]; dup {
			tx.IsDuplicate = true
			tx.DuplicateOfKey = key
			result.Duplicates = append(result.Duplicates, tx)
			continue
		}
		seen[key] = struct{}{}
		result.Unique = append(result.Unique, tx)
	}

	return result
}
