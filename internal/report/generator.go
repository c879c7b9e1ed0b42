// Package report renders a finished analysis for downstream consumers:
// JSON for the loan calculator, CSV for spreadsheet review, XLSX for
// underwriters.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"finlight/cashflow-analyzer/internal/logging"
	"finlight/cashflow-analyzer/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// Generator renders analysis results in the supported output formats.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{logger: logger}
}

// Generate renders the analysis in the given format: "json", "csv" or "xlsx".
func (g *Generator) Generate(analysis *models.CashFlowAnalysis, format string) ([]byte, error) {
	switch format {
	case "json":
		return g.generateJSON(analysis)
	case "csv":
		return g.generateCSV(analysis)
	case "xlsx":
		return g.generateXLSX(analysis)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Generator) generateJSON(analysis *models.CashFlowAnalysis) ([]byte, error) {
	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis to JSON: %w", err)
	}
	return out, nil
}

// generateCSV writes the unique transactions, one row per transaction.
func (g *Generator) generateCSV(analysis *models.CashFlowAnalysis) ([]byte, error) {
	var buf bytes.Buffer
	if err := gocsv.Marshal(analysis.Transactions, &buf); err != nil {
		return nil, fmt.Errorf("failed to write transactions CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// generateXLSX writes a two-sheet workbook: a summary sheet with the
// headline figures and a transactions sheet.
func (g *Generator) generateXLSX(analysis *models.CashFlowAnalysis) ([]byte, error) {
	workbook := excelize.NewFile()
	defer workbook.Close()

	const summarySheet = "Summary"
	if err := workbook.SetSheetName(workbook.GetSheetName(0), summarySheet); err != nil {
		return nil, err
	}

	summaryRows := [][]interface{}{
		{"Total income", analysis.TotalIncome.StringFixed(2)},
		{"Total expenses", analysis.TotalExpenses.StringFixed(2)},
		{"Net cash flow", analysis.NetCashFlow.StringFixed(2)},
		{"Monthly deposits", analysis.MonthlyDeposits.StringFixed(2)},
		{"Monthly expenses", analysis.MonthlyExpenses.StringFixed(2)},
		{"Monthly leftover", analysis.MonthlyLeftover.StringFixed(2)},
		{"Months analyzed", analysis.NumberOfMonths},
		{"Confidence", analysis.Confidence},
		{"Flagged transactions", len(analysis.FlaggedTransactions)},
		{"Duplicates removed", len(analysis.DuplicateTransactions)},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := workbook.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	const txSheet = "Transactions"
	if _, err := workbook.NewSheet(txSheet); err != nil {
		return nil, err
	}
	header := []interface{}{"Date", "Description", "Amount", "Category", "Flagged", "FlagReason"}
	if err := workbook.SetSheetRow(txSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, tx := range analysis.Transactions {
		row := []interface{}{tx.Date, tx.Description, tx.Amount.StringFixed(2), tx.Category, tx.Flagged, tx.FlagReason}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := workbook.SetSheetRow(txSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	g.logger.Debug("Workbook generated",
		logging.Field{Key: logging.FieldCount, Value: len(analysis.Transactions)})

	return buf.Bytes(), nil
}
