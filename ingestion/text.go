package ingestion

import (
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// candidate character encodings, tried in order. UTF-8 is validated directly;
// the rest decode through x/text charmaps.
var textEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"latin-1", charmap.ISO8859_1},
	{"cp1252", charmap.Windows1252},
}

// TextExtractor decodes raw bytes using an ordered list of character
// encodings and returns the text from the first one that succeeds.
type TextExtractor struct{}

func (e *TextExtractor) Extract(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind reader: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	text, err := decodeText(data)

	// Restore the read position so a later stage can re-read the blob.
	if _, seekErr := r.Seek(0, io.SeekStart); seekErr != nil && err == nil {
		err = fmt.Errorf("rewind reader: %w", seekErr)
	}

	return text, err
}

func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	for _, candidate := range textEncodings {
		decoded, err := candidate.enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		return string(decoded), nil
	}

	return "", ErrDecodeFailed
}
