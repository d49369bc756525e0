package qa

import "strings"

// SplitText packs newline-separated lines into chunks of about target
// characters. When overlap is positive, each chunk starts with the previous
// chunk's last line so retrieval does not lose sentences cut at a boundary.
func SplitText(text string, target, overlap int) []string {
	clean := strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(clean, "\n")

	chunks := make([]string, 0)
	current := make([]string, 0)
	currentLen := 0

	for _, line := range lines {
		l := strings.TrimSpace(line)
		if l == "" {
			continue
		}

		lineLen := len(l)
		if currentLen+lineLen > target && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			if overlap > 0 {
				last := current[len(current)-1]
				current = []string{last}
				currentLen = len(last)
			} else {
				current = current[:0]
				currentLen = 0
			}
		}

		current = append(current, l)
		currentLen += lineLen
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	return chunks
}
