package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"finlight/cashflow-analyzer/internal/logging"
	"finlight/cashflow-analyzer/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleAnalysis() *models.CashFlowAnalysis {
	return &models.CashFlowAnalysis{
		TotalIncome:     decimal.NewFromInt(6000),
		TotalExpenses:   decimal.NewFromInt(455),
		NetCashFlow:     decimal.NewFromInt(5545),
		MonthlyDeposits: decimal.NewFromInt(3000),
		MonthlyExpenses: decimal.NewFromFloat(227.50),
		MonthlyLeftover: decimal.NewFromFloat(2772.50),
		NumberOfMonths:  2,
		Transactions: []models.Transaction{
			{Date: "2024-01-02", Description: "Payroll ACME", Amount: decimal.NewFromInt(3000), Category: models.CategoryIncome},
			{Date: "2024-01-05", Description: "Grocery Store", Amount: decimal.NewFromInt(-120), Category: models.CategoryExpense},
		},
		Confidence: 0.82,
	}
}

func TestGenerateJSON(t *testing.T) {
	g := NewGenerator(logging.NewMockLogger())
	out, err := g.Generate(sampleAnalysis(), "json")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "6000", decoded["totalIncome"])
	assert.Equal(t, float64(2), decoded["numberOfMonths"])
}

func TestGenerateCSV(t *testing.T) {
	g := NewGenerator(logging.NewMockLogger())
	out, err := g.Generate(sampleAnalysis(), "csv")
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "Date")
	assert.Contains(t, string(lines[1]), "Payroll ACME")
}

func TestGenerateXLSX(t *testing.T) {
	g := NewGenerator(logging.NewMockLogger())
	out, err := g.Generate(sampleAnalysis(), "xlsx")
	require.NoError(t, err)

	workbook, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer workbook.Close()

	total, err := workbook.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "6000.00", total)

	desc, err := workbook.GetCellValue("Transactions", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Payroll ACME", desc)
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	g := NewGenerator(logging.NewMockLogger())
	_, err := g.Generate(sampleAnalysis(), "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}
