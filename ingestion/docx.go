package ingestion

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DocxExtractor pulls text out of Word documents: every body paragraph in
// document order, then every table in document order. Inline tables are not
// interleaved at their original position.
type DocxExtractor struct{}

func (e *DocxExtractor) Extract(r io.ReadSeeker) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	paragraphs, tables, err := splitDocumentXML(doc.Editable().GetContent())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, paragraph := range paragraphs {
		sb.WriteString(paragraph)
		sb.WriteString("\n")
	}
	for _, table := range tables {
		for _, row := range table {
			for _, cell := range row {
				sb.WriteString(cell)
				sb.WriteString(" ")
			}
			sb.WriteString("\n")
		}
	}

	content := sb.String()
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w in DOCX file", ErrEmptyContent)
	}

	return content, nil
}

// splitDocumentXML walks word/document.xml collecting body-level paragraph
// text and table cell text separately. Paragraphs inside table cells belong
// to their cell, not to the paragraph list.
func splitDocumentXML(content string) (paragraphs []string, tables [][][]string, err error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		tableDepth int
		paragraph  strings.Builder
		inPara     bool
		table      [][]string
		row        []string
		cell       strings.Builder
		inCell     bool
	)

	for {
		tok, tokErr := dec.Token()
		if errors.Is(tokErr, io.EOF) {
			break
		}
		if tokErr != nil {
			return nil, nil, fmt.Errorf("parse document xml: %w", tokErr)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					table = nil
				}
			case "tr":
				if tableDepth == 1 {
					row = nil
				}
			case "tc":
				if tableDepth == 1 {
					cell.Reset()
					inCell = true
				}
			case "p":
				if tableDepth == 0 {
					paragraph.Reset()
					inPara = true
				}
			case "t":
				var text string
				if decErr := dec.DecodeElement(&text, &t); decErr != nil {
					return nil, nil, fmt.Errorf("parse document xml: %w", decErr)
				}
				if tableDepth > 0 {
					if inCell {
						cell.WriteString(text)
					}
				} else if inPara {
					paragraph.WriteString(text)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth == 1 {
					tables = append(tables, table)
				}
				tableDepth--
			case "tr":
				if tableDepth == 1 && row != nil {
					table = append(table, row)
				}
			case "tc":
				if tableDepth == 1 && inCell {
					row = append(row, cell.String())
					inCell = false
				}
			case "p":
				if tableDepth == 0 && inPara {
					paragraphs = append(paragraphs, paragraph.String())
					inPara = false
				}
			}
		}
	}

	return paragraphs, tables, nil
}
