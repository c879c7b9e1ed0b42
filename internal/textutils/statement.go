// Package textutils parses the newline-delimited statement text returned by
// the document-understanding collaborator for image and scanned-PDF inputs.
package textutils

import (
	"regexp"
	"strings"

	"finlight/cashflow-analyzer/internal/dateutils"
	"finlight/cashflow-analyzer/internal/models"
)

// statementLine matches the collaborator's extraction format:
//
//	YYYY-MM-DD | description | ±amount
var statementLine = regexp.MustCompile(`^\s*(\d{4}-\d{2}-\d{2})\s*\|\s*(.+?)\s*\|\s*([+-]?[\d.,']+)\s*$`)

// ParseStatementLines converts extracted statement text into transactions.
// Lines that do not match the expected format are skipped and returned in
// the second value so callers can log them.
func ParseStatementLines(text, sourceFile string) ([]models.Transaction, []string) {
	var transactions []models.Transaction
	var skipped []string

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		matches := statementLine.FindStringSubmatch(line)
		if matches == nil {
			skipped = append(skipped, line)
			continue
		}
		transactions = append(transactions, models.Transaction{
			Date:        dateutils.ToISODate(matches[1]),
			Description: matches[2],
			Amount:      models.ParseAmount(matches[3]),
			SourceFile:  sourceFile,
		})
	}

	return transactions, skipped
}

// EstimateTokens approximates the token count of a text payload the way the
// categorization collaborator bills it: roughly one token per four
// characters, rounded up.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
