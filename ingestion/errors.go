package ingestion

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the extraction failure kinds. They survive the
// facade-level wrap, so callers can classify failures with errors.Is.
var (
	ErrSizeLimit         = errors.New("file size exceeds maximum limit")
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrMissingDependency = errors.New("extraction backend not available")
	ErrDecodeFailed      = errors.New("unable to decode file with common encodings")
	ErrEmptyContent      = errors.New("no text content found")
)

// SizeLimitError reports a blob larger than the configured maximum. It is
// returned before any format-specific work begins and is never wrapped in an
// ExtractionError.
type SizeLimitError struct {
	Size int64
	Max  int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("file size (%d bytes) exceeds maximum limit (%d bytes)", e.Size, e.Max)
}

func (e *SizeLimitError) Is(target error) bool { return target == ErrSizeLimit }

// ExtractionError wraps any failure past the size check with the format tag.
// Extractor-internal error types never cross the registry boundary unwrapped.
type ExtractionError struct {
	Format Format
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("processing %s file: %v", strings.ToUpper(string(e.Format)), e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
