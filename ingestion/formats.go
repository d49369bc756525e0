// Package ingestion turns uploaded document blobs into plain text. A
// capability registry built at startup maps each supported file extension to
// an extractor; the registry's Extract method validates size, dispatches by
// extension, and wraps extractor failures into a uniform error.
package ingestion

import "strings"

// Format is the content-kind tag derived from a file name's extension.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatXlsx Format = "xlsx"
	FormatXls  Format = "xls"
	FormatCSV  Format = "csv"
)

// DetectFormat returns the lowercase substring after the final period of the
// file name. A name without a period yields the whole name, which no
// extractor matches, so it fails as unsupported downstream.
func DetectFormat(name string) Format {
	lower := strings.ToLower(name)
	if idx := strings.LastIndex(lower, "."); idx >= 0 {
		return Format(lower[idx+1:])
	}
	return Format(lower)
}
