package extractor

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"finlight/cashflow-analyzer/internal/dateutils"
	"finlight/cashflow-analyzer/internal/logging"
	"finlight/cashflow-analyzer/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// csvRow is the canonical tabular row shape after header normalization.
type csvRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
}

// headerAliases maps the column names banks actually use onto the canonical
// ones. Comparison is case-insensitive on the trimmed header cell.
var headerAliases = map[string]string{
	"date":             "Date",
	"transaction date": "Date",
	"posting date":     "Date",
	"value date":       "Date",
	"booking date":     "Date",
	"description":      "Description",
	"details":          "Description",
	"memo":             "Description",
	"payee":            "Description",
	"narrative":        "Description",
	"amount":           "Amount",
	"value":            "Amount",
	"transaction":      "Amount",
}

func (e *Extractor) extractCSV(ctx context.Context, file models.FileInput) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized, err := normalizeCSVHeader(file.Data)
	if err != nil {
		return nil, fmt.Errorf("could not read CSV %s: %w", file.Filename, err)
	}

	var rows []*csvRow
	if err := gocsv.UnmarshalBytes(normalized, &rows); err != nil {
		return nil, fmt.Errorf("could not parse CSV %s: %w", file.Filename, err)
	}

	return e.rowsToTransactions(rows, file.Filename)
}

func (e *Extractor) extractXLSX(ctx context.Context, file models.FileInput) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(file.Data))
	if err != nil {
		return nil, fmt.Errorf("could not open workbook %s: %w", file.Filename, err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", file.Filename)
	}

	cells, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %s: %w", sheets[0], err)
	}
	if len(cells) < 2 {
		return nil, fmt.Errorf("sheet %s has no data rows", sheets[0])
	}

	columns := mapHeaderColumns(cells[0])
	dateCol, ok := columns["Date"]
	if !ok {
		return nil, fmt.Errorf("sheet %s has no date column", sheets[0])
	}
	descCol, ok := columns["Description"]
	if !ok {
		return nil, fmt.Errorf("sheet %s has no description column", sheets[0])
	}
	amountCol, ok := columns["Amount"]
	if !ok {
		return nil, fmt.Errorf("sheet %s has no amount column", sheets[0])
	}

	var rows []*csvRow
	for _, row := range cells[1:] {
		rows = append(rows, &csvRow{
			Date:        cell(row, dateCol),
			Description: cell(row, descCol),
			Amount:      cell(row, amountCol),
		})
	}

	return e.rowsToTransactions(rows, file.Filename)
}

func (e *Extractor) rowsToTransactions(rows []*csvRow, sourceFile string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	skipped := 0
	for _, row := range rows {
		if strings.TrimSpace(row.Date) == "" && strings.TrimSpace(row.Amount) == "" {
			continue
		}
		if _, err := dateutils.ParseDate(row.Date); err != nil {
			skipped++
			continue
		}
		transactions = append(transactions, models.Transaction{
			Date:        dateutils.ToISODate(row.Date),
			Description: strings.TrimSpace(row.Description),
			Amount:      models.ParseAmount(row.Amount),
			SourceFile:  sourceFile,
		})
	}

	if skipped > 0 {
		e.logger.Warn("Skipped rows with unparseable dates",
			logging.Field{Key: logging.FieldFile, Value: sourceFile},
			logging.Field{Key: logging.FieldCount, Value: skipped})
	}
	if len(transactions) == 0 {
		return nil, fmt.Errorf("no transactions found in %s", sourceFile)
	}
	return transactions, nil
}

// normalizeCSVHeader rewrites the header row to the canonical column names
// so that gocsv can bind the remaining rows.
func normalizeCSVHeader(data []byte) ([]byte, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	for i, name := range header {
		if canonical, ok := headerAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			header[i] = canonical
		}
	}

	var out bytes.Buffer
	writer := csv.NewWriter(&out)
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	writer.Flush()

	rest := data
	if idx := bytes.IndexByte(data, '\n'); idx != -1 {
		rest = data[idx+1:]
	} else {
		rest = nil
	}
	out.Write(rest)

	return out.Bytes(), nil
}

func mapHeaderColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for i, name := range header {
		if canonical, ok := headerAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			if _, seen := columns[canonical]; !seen {
				columns[canonical] = i
			}
		}
	}
	return columns
}

func cell(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return row[index]
}
