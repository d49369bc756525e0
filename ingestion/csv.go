package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var csvSeparators = []rune{',', ';', '\t'}

// CSVExtractor tries every (encoding, separator) combination in order and
// accepts the first one that parses into a plausible table. When none of the
// combinations work, the raw bytes are decoded as plain text instead.
type CSVExtractor struct {
	Text *TextExtractor
}

func (e *CSVExtractor) Extract(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind reader: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	for _, decoded := range decodeCandidates(data) {
		for _, sep := range csvSeparators {
			if _, seekErr := r.Seek(0, io.SeekStart); seekErr != nil {
				return "", fmt.Errorf("rewind reader: %w", seekErr)
			}

			rendered, ok := parseDelimited(decoded, sep)
			if ok {
				return rendered, nil
			}
		}
	}

	// Last resort: treat the payload as plain text.
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind reader: %w", err)
	}
	return e.Text.Extract(r)
}

// parseDelimited parses content with the given separator and renders the
// table when it looks plausible: more than one column, or more than one data
// row past the header, and a non-empty rendering.
func parseDelimited(content string, sep rune) (string, bool) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = sep

	records, err := reader.ReadAll()
	if err != nil || len(records) == 0 {
		return "", false
	}

	columns := len(records[0])
	dataRows := len(records) - 1
	if columns <= 1 && dataRows <= 1 {
		return "", false
	}

	var sb strings.Builder
	for _, record := range records {
		sb.WriteString(strings.Join(record, "\t"))
		sb.WriteString("\n")
	}

	rendered := sb.String()
	if strings.TrimSpace(rendered) == "" {
		return "", false
	}

	return rendered, true
}

// decodeCandidates returns the payload decoded under each candidate
// encoding, in attempt order, skipping encodings that fail.
func decodeCandidates(data []byte) []string {
	candidates := make([]string, 0, len(textEncodings)+1)
	if utf8.Valid(data) {
		candidates = append(candidates, string(data))
	}
	for _, candidate := range textEncodings {
		decoded, err := candidate.enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		candidates = append(candidates, string(decoded))
	}
	return candidates
}
