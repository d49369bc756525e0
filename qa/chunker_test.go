package qa

import (
	"strings"
	"testing"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("one small line", 800, 200)
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
	if chunks[0] != "one small line" {
		t.Fatalf("unexpected chunk %q", chunks[0])
	}
}

func TestSplitTextOverlapCarriesLastLine(t *testing.T) {
	text := "first line here\nsecond line here\nthird line here"
	chunks := SplitText(text, 30, 10)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}

	for i := 1; i < len(chunks); i++ {
		prevLines := strings.Split(chunks[i-1], "\n")
		last := prevLines[len(prevLines)-1]
		if !strings.HasPrefix(chunks[i], last) {
			t.Fatalf("chunk %d does not start with previous chunk's last line: %q vs %q", i, chunks[i], last)
		}
	}
}

func TestSplitTextNoOverlap(t *testing.T) {
	text := "first line here\nsecond line here\nthird line here"
	chunks := SplitText(text, 30, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}

	seen := map[string]int{}
	for _, chunk := range chunks {
		for _, line := range strings.Split(chunk, "\n") {
			seen[line]++
		}
	}
	for line, count := range seen {
		if count != 1 {
			t.Fatalf("line %q appears %d times without overlap", line, count)
		}
	}
}

func TestSplitTextSkipsBlankLines(t *testing.T) {
	chunks := SplitText("alpha\n\n\n  \nbeta", 800, 200)
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
	if chunks[0] != "alpha\nbeta" {
		t.Fatalf("expected blank lines dropped, got %q", chunks[0])
	}
}

func TestSplitTextNormalizesLineEndings(t *testing.T) {
	chunks := SplitText("alpha\r\nbeta", 800, 200)
	if len(chunks) != 1 || chunks[0] != "alpha\nbeta" {
		t.Fatalf("expected CRLF normalized, got %v", chunks)
	}
}

func TestSplitTextEmpty(t *testing.T) {
	if chunks := SplitText("   \n  ", 800, 200); len(chunks) != 0 {
		t.Fatalf("expected no chunks for blank input, got %v", chunks)
	}
}
