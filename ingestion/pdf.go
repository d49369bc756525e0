package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	dslipak "github.com/dslipak/pdf"
	ledongthuc "github.com/ledongthuc/pdf"
)

// PDFBackend is one of the interchangeable PDF text extraction libraries.
// Exactly one backend is bound into a registry at startup; they are never
// both tried against the same file.
type PDFBackend interface {
	Name() string
	ExtractPages(r io.ReaderAt, size int64) ([]string, error)
}

func selectPDFBackend(name string) PDFBackend {
	switch name {
	case "layout":
		return &layoutPDFBackend{}
	default:
		return &pageTextPDFBackend{}
	}
}

// pageTextPDFBackend extracts text page by page via ledongthuc/pdf.
type pageTextPDFBackend struct{}

func (b *pageTextPDFBackend) Name() string { return "pagetext" }

func (b *pageTextPDFBackend) ExtractPages(r io.ReaderAt, size int64) ([]string, error) {
	doc, err := ledongthuc.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := doc.NumPage()
	pages := make([]string, 0, total)
	for num := 1; num <= total; num++ {
		page := doc.Page(num)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not abort the document.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// layoutPDFBackend extracts the whole document's text at once via
// dslipak/pdf, which orders runs by layout position.
type layoutPDFBackend struct{}

func (b *layoutPDFBackend) Name() string { return "layout" }

func (b *layoutPDFBackend) ExtractPages(r io.ReaderAt, size int64) ([]string, error) {
	doc, err := dslipak.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	plain, err := doc.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, plain); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	return []string{buf.String()}, nil
}

// PDFExtractor concatenates the bound backend's page texts with a line break
// after each non-empty page.
type PDFExtractor struct {
	Backend PDFBackend
}

func (e *PDFExtractor) Extract(r io.ReadSeeker) (string, error) {
	if e.Backend == nil {
		return "", fmt.Errorf("%w for pdf files", ErrMissingDependency)
	}

	// Both backends need an io.ReaderAt with a known size, so buffer.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	pages, err := e.Backend.ExtractPages(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, page := range pages {
		if page == "" {
			continue
		}
		sb.WriteString(page)
		sb.WriteString("\n")
	}

	content := sb.String()
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w in PDF", ErrEmptyContent)
	}

	return content, nil
}
