package ingestion

import "testing"

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		want Format
	}{
		{"report.pdf", FormatPDF},
		{"Notes.TXT", FormatText},
		{"data.v2.csv", FormatCSV},
		{"letter.docx", FormatDocx},
		{"sheet.xlsx", FormatXlsx},
		{"legacy.XLS", FormatXls},
		{"archive.tar.gz", Format("gz")},
		{"README", Format("readme")},
	}

	for _, tc := range cases {
		if got := DetectFormat(tc.name); got != tc.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
