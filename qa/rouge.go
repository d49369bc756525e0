package qa

import "strings"

// RougeScore is the unigram-overlap (ROUGE-1) measure of an answer against
// the retrieved context it was synthesized from.
type RougeScore struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Rouge1 computes unigram precision, recall, and F1 of candidate against
// reference. Tokenization is lowercase whitespace splitting.
func Rouge1(candidate, reference string) RougeScore {
	candTokens := tokenize(candidate)
	refTokens := tokenize(reference)
	if len(candTokens) == 0 || len(refTokens) == 0 {
		return RougeScore{}
	}

	refCounts := make(map[string]int, len(refTokens))
	for _, tok := range refTokens {
		refCounts[tok]++
	}

	overlap := 0
	for _, tok := range candTokens {
		if refCounts[tok] > 0 {
			refCounts[tok]--
			overlap++
		}
	}

	precision := float64(overlap) / float64(len(candTokens))
	recall := float64(overlap) / float64(len(refTokens))

	score := RougeScore{Precision: precision, Recall: recall}
	if precision+recall > 0 {
		score.F1 = 2 * precision * recall / (precision + recall)
	}
	return score
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
