package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "123.45", "123.45"},
		{"negative", "-50.00", "-50"},
		{"currency symbol", "CHF 1'200.50", "1200.5"},
		{"euro symbol", "€99.99", "99.99"},
		{"comma decimal", "12,50", "12.5"},
		{"thousand comma", "1,200.00", "1200"},
		{"garbage", "n/a", "0"},
		{"empty", "", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected, err := decimal.NewFromString(tt.expected)
			assert.NoError(t, err)
			assert.True(t, ParseAmount(tt.input).Equal(expected),
				"ParseAmount(%q) = %s, want %s", tt.input, ParseAmount(tt.input), expected)
		})
	}
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range []string{CategoryIncome, CategoryExpense, CategoryHousing, CategoryOneTime, CategoryRecurring} {
		assert.True(t, IsValidCategory(c), "category %q should be valid", c)
	}
	assert.False(t, IsValidCategory("groceries"))
	assert.False(t, IsValidCategory(""))
	assert.False(t, IsValidCategory("Income"))
}

func TestTransactionDirection(t *testing.T) {
	in := Transaction{Amount: decimal.NewFromInt(100), Category: CategoryIncome}
	out := Transaction{Amount: decimal.NewFromInt(-40), Category: CategoryExpense}

	assert.True(t, in.IsInflow())
	assert.True(t, in.IsIncome())
	assert.False(t, out.IsInflow())
	assert.False(t, out.IsIncome())
}
