package ingestion

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, cells map[string]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for ref, value := range cells {
		if err := f.SetCellValue("Sheet1", ref, value); err != nil {
			t.Fatalf("set cell %s: %v", ref, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestSpreadsheetExtractor(t *testing.T) {
	data := buildWorkbook(t, map[string]string{
		"A1": "Name", "B1": "City",
		"A2": "Ada", "B2": "London",
	})

	e := &SpreadsheetExtractor{}
	text, err := e.Extract(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(text, "--- Sheet: Sheet1 ---") {
		t.Fatalf("expected sheet header, got %q", text)
	}
	if !strings.Contains(text, "Name\tCity") {
		t.Fatalf("expected tab-joined header row, got %q", text)
	}
	if !strings.Contains(text, "Ada\tLondon") {
		t.Fatalf("expected tab-joined data row, got %q", text)
	}
}

func TestSpreadsheetExtractorEmptyWorkbook(t *testing.T) {
	data := buildWorkbook(t, nil)

	e := &SpreadsheetExtractor{}
	_, err := e.Extract(bytes.NewReader(data))
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestSpreadsheetExtractorNotAWorkbook(t *testing.T) {
	e := &SpreadsheetExtractor{}
	_, err := e.Extract(bytes.NewReader([]byte("not a zip archive")))
	if err == nil {
		t.Fatal("expected error for malformed workbook")
	}
}
