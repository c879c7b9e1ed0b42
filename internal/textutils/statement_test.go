package textutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatementLines(t *testing.T) {
	text := `2024-01-05 | Starbucks #123 | -50.00
2024-01-06 | ACME Payroll | +3200.00

not a transaction line
2024-01-07 | Rent | -1500`

	transactions, skipped := ParseStatementLines(text, "jan.png")

	require.Len(t, transactions, 3)
	assert.Equal(t, "2024-01-05", transactions[0].Date)
	assert.Equal(t, "Starbucks #123", transactions[0].Description)
	assert.True(t, transactions[0].Amount.Equal(decimal.NewFromInt(-50)))
	assert.True(t, transactions[1].Amount.Equal(decimal.NewFromInt(3200)))
	assert.Equal(t, "jan.png", transactions[2].SourceFile)

	require.Len(t, skipped, 1)
	assert.Equal(t, "not a transaction line", skipped[0])
}

func TestParseStatementLinesEmpty(t *testing.T) {
	transactions, skipped := ParseStatementLines("", "x.pdf")
	assert.Empty(t, transactions)
	assert.Empty(t, skipped)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	assert.Equal(t, 25, EstimateTokens(string(make([]byte, 100))))
}
