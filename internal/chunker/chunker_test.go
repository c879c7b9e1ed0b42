package chunker

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"finlight/cashflow-analyzer/internal/logging"
	"finlight/cashflow-analyzer/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTransactions(n int) []models.Transaction {
	transactions := make([]models.Transaction, n)
	for i := range transactions {
		transactions[i] = models.Transaction{
			Date:        fmt.Sprintf("2024-01-%02d", i%28+1),
			Description: fmt.Sprintf("tx %d", i),
			Amount:      decimal.NewFromInt(int64(i)),
		}
	}
	return transactions
}

func newTestPlanner() *Planner {
	return NewPlanner(logging.NewMockLogger(), 300, 150, 15000)
}

func TestSplitTransactionsUnderThreshold(t *testing.T) {
	p := newTestPlanner()

	chunks := p.SplitTransactions(makeTransactions(300))
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], 300)
}

func TestSplitTransactionsEmpty(t *testing.T) {
	assert.Nil(t, newTestPlanner().SplitTransactions(nil))
}

func TestSplitTransactionsRoundTrip(t *testing.T) {
	p := newTestPlanner()

	for _, n := range []int{301, 450, 1000, 1501} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			original := makeTransactions(n)
			chunks := p.SplitTransactions(original)

			// All chunks except possibly the last stay within the window size.
			for i, chunk := range chunks[:len(chunks)-1] {
				assert.Len(t, chunk, p.MaxPerChunk, "chunk %d", i)
			}
			assert.LessOrEqual(t, len(chunks[len(chunks)-1]), p.MaxPerChunk)

			// Concatenation reproduces the input exactly.
			var recombined []models.Transaction
			for _, chunk := range chunks {
				recombined = append(recombined, chunk...)
			}
			require.Len(t, recombined, n)
			for i := range original {
				assert.Equal(t, original[i].Description, recombined[i].Description)
			}
		})
	}
}

func TestSplitTextUnderCeiling(t *testing.T) {
	p := newTestPlanner()
	chunks := p.SplitText(`[{"a":1}]`)
	require.Len(t, chunks, 1)
	assert.Equal(t, `[{"a":1}]`, chunks[0])
}

func TestSplitTextJSONArray(t *testing.T) {
	p := NewPlanner(logging.NewMockLogger(), 300, 150, 50)

	elements := make([]string, 20)
	for i := range elements {
		elements[i] = fmt.Sprintf(`{"description":"transaction %02d"}`, i)
	}
	payload := "[" + strings.Join(elements, ",") + "]"

	chunks := p.SplitText(payload)
	require.Greater(t, len(chunks), 1)

	// Every chunk is itself a valid JSON array and the element count is
	// preserved across chunks.
	total := 0
	for _, chunk := range chunks {
		var part []json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(chunk), &part))
		total += len(part)
	}
	assert.Equal(t, 20, total)
}

func TestSplitTextNonArrayPassesThrough(t *testing.T) {
	p := NewPlanner(logging.NewMockLogger(), 300, 150, 10)
	payload := strings.Repeat("raw statement text ", 50)

	chunks := p.SplitText(payload)
	require.Len(t, chunks, 1)
	assert.Equal(t, payload, chunks[0])
}
