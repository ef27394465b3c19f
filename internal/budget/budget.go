// Package budget provides token budget estimation and context trimming for
// the retrieval pipeline. Because answer engines span multiple LLM backends
// with different tokenizers, this package uses a conservative character-based
// heuristic: 1 token ≈ 4 characters (English prose). This deliberately
// under-estimates token counts to leave headroom for model-specific overhead.
package budget

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English; using 3 would be
	// more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default budget for retrieved context in
	// tokens. Conservative enough to fit within 8k-context models while
	// leaving room for the question, instructions, and the answer itself.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateChunks returns the estimated total token count for a slice of
// retrieved chunks as they would appear joined into a single context string.
func EstimateChunks(chunks []string) int {
	total := 0
	for _, c := range chunks {
		total += Estimate(c)
		// One joining space per chunk boundary.
		total++
	}
	return total
}

// TrimChunks drops the lowest-ranked chunks from the tail until the estimated
// token count of the remainder fits within maxTokens. Chunks arrive in
// descending similarity order, so trimming from the tail discards the least
// relevant context first.
//
// A single chunk that alone exceeds the budget is kept, so the engine always
// receives at least the best match.
func TrimChunks(chunks []string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxContextTokens
	}
	for len(chunks) > 1 {
		if EstimateChunks(chunks) <= maxTokens {
			break
		}
		chunks = chunks[:len(chunks)-1]
	}
	return chunks
}
