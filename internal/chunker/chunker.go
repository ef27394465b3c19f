// Package chunker splits raw course text into bounded-size chunks suitable
// for embedding. Splitting happens only at sentence boundaries (the literal
// ". " delimiter) so no sentence is ever cut mid-way; a single sentence
// longer than the limit becomes its own oversized chunk.
package chunker

import (
	"strings"
)

// DefaultChunkSize is the maximum number of characters per chunk.
// Sized so a chunk plus prompt scaffolding stays well inside the embedding
// model's input window.
const DefaultChunkSize = 2048

// delimiter is the sentence boundary the chunker splits on and re-appends
// when assembling chunks.
const delimiter = ". "

// Chunker greedily packs sentences into chunks of at most maxSize characters.
// It is stateless and safe for concurrent use.
type Chunker struct {
	// maxSize is the maximum chunk length in characters.
	maxSize int
}

// New constructs a Chunker with the given maximum chunk size.
// A non-positive maxSize falls back to DefaultChunkSize.
func New(maxSize int) *Chunker {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}
	return &Chunker{maxSize: maxSize}
}

// Split divides text into an ordered sequence of chunks. Sentences are
// accumulated greedily; when appending the next sentence would push the
// current chunk past maxSize, the chunk is closed and a new one started.
// The trailing partial chunk is always flushed.
//
// An empty input yields zero chunks. Input without any ". " boundary yields
// exactly one chunk, even when it exceeds maxSize. The result is a pure
// function of (text, maxSize).
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	fragments := strings.Split(text, delimiter)

	// The final fragment usually carries the closing period of the source
	// text; fold it into the re-appended delimiter so chunks join uniformly.
	last := len(fragments) - 1
	fragments[last] = strings.TrimSuffix(fragments[last], ".")

	var chunks []string
	var current string

	for _, frag := range fragments {
		if frag == "" {
			continue
		}
		sentence := frag + delimiter
		if current != "" && len(current)+len(sentence) > c.maxSize {
			chunks = append(chunks, current)
			current = ""
		}
		current += sentence
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}
