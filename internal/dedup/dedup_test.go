package dedup

import (
	"strings"
	"testing"
	"unicode/utf8"

	"finlight/cashflow-analyzer/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyNormalization(t *testing.T) {
	a := models.Transaction{
		Date:        "2024-01-05",
		Amount:      decimal.RequireFromString("-50.00"),
		Description: "Starbucks #123",
	}
	b := models.Transaction{
		Date:        "2024-01-05",
		Amount:      decimal.RequireFromString("-50.004"),
		Description: "STARBUCKS #123!!",
	}

	assert.Equal(t, Key(a), Key(b), "amount rounds to 2dp and description normalizes")
}

func TestKeyIsOrderIndependentOfFields(t *testing.T) {
	tx := models.Transaction{
		Date:        "05.01.2024", // European layout normalizes to ISO
		Amount:      decimal.RequireFromString("50"),
		Description: "Rent January",
	}
	iso := models.Transaction{
		Date:        "2024-01-05",
		Amount:      decimal.RequireFromString("-50.00"), // abs() folds the sign
		Description: "rent january",
	}
	assert.Equal(t, Key(iso), Key(tx))
}

func TestKeyTruncatesLongDescriptions(t *testing.T) {
	long := models.Transaction{
		Date:        "2024-01-05",
		Amount:      decimal.NewFromInt(10),
		Description: "abcdefghij abcdefghij abcdefghij abcdefghij abcdefghij abcdefghij",
	}
	key := Key(long)
	// date(10) + sep + amount + sep + 50-char description
	assert.Contains(t, key, "|10.00|")
	parts := len("2024-01-05") + 1 + len("10.00") + 1 + 50
	assert.Len(t, key, parts)
}

func TestKeyTruncatesOnRunesNotBytes(t *testing.T) {
	// 60 two-byte runes; a byte cut at 50 would land mid-rune.
	long := models.Transaction{
		Date:        "2024-01-05",
		Amount:      decimal.NewFromInt(10),
		Description: strings.Repeat("é", 60),
	}
	key := Key(long)
	description := key[strings.LastIndex(key, "|")+1:]
	assert.True(t, utf8.ValidString(description))
	assert.Equal(t, 50, utf8.RuneCountInString(description))
}

func TestDeduplicateFirstOccurrenceWins(t *testing.T) {
	transactions := []models.Transaction{
		{Date: "2024-01-05", Amount: decimal.NewFromInt(-50), Description: "Starbucks #123", SourceFile: "jan-a.pdf"},
		{Date: "2024-01-06", Amount: decimal.NewFromInt(-20), Description: "Lunch", SourceFile: "jan-a.pdf"},
		{Date: "2024-01-05", Amount: decimal.RequireFromString("-50.004"), Description: "STARBUCKS #123!!", SourceFile: "jan-b.pdf"},
	}

	result := Deduplicate(transactions)

	require.Len(t, result.Unique, 2)
	require.Len(t, result.Duplicates, 1)

	// The earlier-processed copy is canonical.
	assert.Equal(t, "jan-a.pdf", result.Unique[0].SourceFile)
	assert.Equal(t, "jan-b.pdf", result.Duplicates[0].SourceFile)
	assert.True(t, result.Duplicates[0].IsDuplicate)
	assert.Equal(t, Key(transactions[0]), result.Duplicates[0].DuplicateOfKey)

	// Canonical copies are not mutated.
	assert.False(t, result.Unique[0].IsDuplicate)
	assert.Empty(t, result.Unique[0].DuplicateOfKey)
}

func TestDeduplicateIdempotent(t *testing.T) {
	transactions := []models.Transaction{
		{Date: "2024-01-05", Amount: decimal.NewFromInt(-50), Description: "Coffee"},
		{Date: "2024-01-05", Amount: decimal.NewFromInt(-50), Description: "Coffee"},
		{Date: "2024-01-06", Amount: decimal.NewFromInt(100), Description: "Refund"},
	}

	first := Deduplicate(transactions)
	second := Deduplicate(first.Unique)

	assert.Len(t, second.Unique, len(first.Unique))
	assert.Empty(t, second.Duplicates, "running dedup on its own unique output finds nothing new")
}

func TestDeduplicateEmpty(t *testing.T) {
	result := Deduplicate(nil)
	assert.Empty(t, result.Unique)
	assert.Empty(t, result.Duplicates)
}
