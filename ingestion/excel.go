package ingestion

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetExtractor renders every sheet of a workbook as a named block of
// tab-separated rows, in workbook order.
type SpreadsheetExtractor struct{}

func (e *SpreadsheetExtractor) Extract(r io.ReadSeeker) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n--- Sheet: %s ---\n", sheet))
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
	}

	content := sb.String()
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w in Excel file", ErrEmptyContent)
	}

	return content, nil
}
