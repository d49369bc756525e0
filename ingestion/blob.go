package ingestion

import (
	"bytes"
	"io"
)

// MaxUploadSize is the hard cap on a single uploaded file, enforced before
// any format-specific parsing.
const MaxUploadSize = 10 * 1024 * 1024

// Blob is an uploaded file: its byte content behind a seekable reader plus
// metadata. The registry borrows the reader for one extraction call and
// leaves its position at the start on return.
type Blob struct {
	Name      string
	Size      int64
	MediaType string
	Reader    io.ReadSeeker
}

// NewBlob wraps an in-memory payload as a Blob.
func NewBlob(name string, data []byte) Blob {
	return Blob{
		Name:   name,
		Size:   int64(len(data)),
		Reader: bytes.NewReader(data),
	}
}
