package ingestion

import (
	"fmt"
	"io"
	"log"
)

// Extractor converts raw bytes of one format into a flat text string.
type Extractor interface {
	Extract(r io.ReadSeeker) (string, error)
}

// Backends lists the optional parsing backends bound into a registry. A nil
// PDF backend or a false flag marks the capability as unavailable; the
// matching formats then fail fast with ErrMissingDependency.
type Backends struct {
	PDF   PDFBackend
	Docx  bool
	Excel bool
}

// DefaultBackends enables every backend, binding the PDF backend selected by
// name. An empty or unknown name falls back to the page-text backend.
func DefaultBackends(pdfBackend string) Backends {
	return Backends{
		PDF:   selectPDFBackend(pdfBackend),
		Docx:  true,
		Excel: true,
	}
}

// Registry maps content-kind tags to extractors. It is built once at process
// start and never mutated afterwards, so it is safe to share without locking.
type Registry struct {
	extractors map[Format]Extractor
	missing    []string
	logger     *log.Logger
}

var knownFormats = map[Format]bool{
	FormatText: true,
	FormatPDF:  true,
	FormatDocx: true,
	FormatXlsx: true,
	FormatXls:  true,
	FormatCSV:  true,
}

// NewRegistry builds the format dispatch table from the given backends.
func NewRegistry(b Backends, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}

	text := &TextExtractor{}
	r := &Registry{
		extractors: map[Format]Extractor{
			FormatText: text,
			FormatCSV:  &CSVExtractor{Text: text},
		},
		logger: logger,
	}

	if b.PDF != nil {
		r.extractors[FormatPDF] = &PDFExtractor{Backend: b.PDF}
	} else {
		r.missing = append(r.missing, "PDF text backend (for PDF files)")
	}

	if b.Docx {
		r.extractors[FormatDocx] = &DocxExtractor{}
	} else {
		r.missing = append(r.missing, "document backend (for Word documents)")
	}

	if b.Excel {
		sheets := &SpreadsheetExtractor{}
		r.extractors[FormatXlsx] = sheets
		r.extractors[FormatXls] = sheets
	} else {
		r.missing = append(r.missing, "spreadsheet backend (for Excel files)")
	}

	return r
}

// Supported returns the file extensions the registry can currently extract.
func (r *Registry) Supported() []string {
	supported := []string{"txt", "csv"}
	if _, ok := r.extractors[FormatPDF]; ok {
		supported = append(supported, "pdf")
	}
	if _, ok := r.extractors[FormatDocx]; ok {
		supported = append(supported, "docx")
	}
	if _, ok := r.extractors[FormatXlsx]; ok {
		supported = append(supported, "xlsx", "xls")
	}
	return supported
}

// Missing returns human-readable descriptions of unavailable backends and
// the formats each one would enable.
func (r *Registry) Missing() []string {
	return append([]string(nil), r.missing...)
}

// Extract validates the blob's size, dispatches to the extractor matching its
// extension, and returns the extracted text. Any failure past the size check
// comes back as an ExtractionError tagged with the format. The blob's read
// position is left at the start on return.
func (r *Registry) Extract(blob Blob) (string, error) {
	if blob.Size > MaxUploadSize {
		return "", &SizeLimitError{Size: blob.Size, Max: MaxUploadSize}
	}

	format := DetectFormat(blob.Name)
	extractor, ok := r.extractors[format]
	if !ok {
		if knownFormats[format] {
			return "", &ExtractionError{Format: format, Err: fmt.Errorf("%w for %s files", ErrMissingDependency, format)}
		}
		return "", &ExtractionError{Format: format, Err: fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)}
	}

	if _, err := blob.Reader.Seek(0, io.SeekStart); err != nil {
		return "", &ExtractionError{Format: format, Err: fmt.Errorf("rewind blob: %w", err)}
	}

	text, err := extractor.Extract(blob.Reader)

	if _, seekErr := blob.Reader.Seek(0, io.SeekStart); seekErr != nil && err == nil {
		err = fmt.Errorf("rewind blob: %w", seekErr)
	}

	if err != nil {
		return "", &ExtractionError{Format: format, Err: err}
	}

	return text, nil
}
