package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"finlight/cashflow-analyzer/internal/logging"
	"finlight/cashflow-analyzer/internal/models"
	"finlight/cashflow-analyzer/internal/textutils"

	"github.com/ledongthuc/pdf"
)

// extractPDF tries the local text layer first and falls back to the
// collaborator for scanned or image-based PDFs.
func (e *Extractor) extractPDF(ctx context.Context, file models.FileInput) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := pdfPlainText(file.Data)
	if err == nil {
		transactions, _ := textutils.ParseStatementLines(text, file.Filename)
		if len(transactions) > 0 {
			e.logger.Debug("Parsed PDF text layer locally",
				logging.Field{Key: logging.FieldFile, Value: file.Filename},
				logging.Field{Key: logging.FieldCount, Value: len(transactions)})
			return transactions, nil
		}
	} else {
		e.logger.WithError(err).Debug("PDF has no usable text layer",
			logging.Field{Key: logging.FieldFile, Value: file.Filename})
	}

	return e.extractViaCollaborator(ctx, file)
}

// pdfPlainText pulls the text layer out of a PDF. The library panics on some
// malformed files, so the panic is converted to an error.
func pdfPlainText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	if reader.NumPage() == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var sb bytes.Buffer
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", err
	}
	return sb.String(), nil
}
