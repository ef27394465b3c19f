package chunker

import (
	"strings"
	"testing"
)

func Test_Split_EmptyInputYieldsNoChunks(t *testing.T) {
	t.Parallel()

	c := New(DefaultChunkSize)
	if got := c.Split(""); got != nil {
		t.Errorf("want nil for empty input, got %q", got)
	}
}

func Test_Split_ShortInputYieldsSingleChunk(t *testing.T) {
	t.Parallel()

	c := New(DefaultChunkSize)
	chunks := c.Split("The telescope gathers light. The detector counts photons.")
	if len(chunks) != 1 {
		t.Fatalf("want 1 chunk, got %d: %q", len(chunks), chunks)
	}
	want := "The telescope gathers light. The detector counts photons. "
	if chunks[0] != want {
		t.Errorf("want %q, got %q", want, chunks[0])
	}
}

func Test_Split_NoDelimiterYieldsSingleChunkEvenOversized(t *testing.T) {
	t.Parallel()

	// One long sentence with no ". " boundary anywhere must stay intact.
	long := strings.Repeat("x", 100)
	c := New(10)
	chunks := c.Split(long)
	if len(chunks) != 1 {
		t.Fatalf("want 1 chunk, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[0], long) {
		t.Errorf("oversized sentence was split: %q", chunks[0])
	}
}

// Test_Split_SentenceBoundaries covers the worked example from the ingestion
// design: "A. B. C." with a 4-character limit becomes three single-sentence
// chunks in order.
func Test_Split_SentenceBoundaries(t *testing.T) {
	t.Parallel()

	c := New(4)
	chunks := c.Split("A. B. C.")

	want := []string{"A. ", "B. ", "C. "}
	if len(chunks) != len(want) {
		t.Fatalf("want %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk[%d]: want %q, got %q", i, want[i], chunks[i])
		}
	}
}

func Test_Split_GreedyPacking(t *testing.T) {
	t.Parallel()

	// Two short sentences fit one chunk; the third forces a new chunk.
	c := New(8)
	chunks := c.Split("A. B. CCCCC.")

	want := []string{"A. B. ", "CCCCC. "}
	if len(chunks) != len(want) {
		t.Fatalf("want %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk[%d]: want %q, got %q", i, want[i], chunks[i])
		}
	}
}

// Test_Split_NoChunkExceedsLimit verifies the size bound holds for every
// chunk unless the chunk is a single oversized sentence.
func Test_Split_NoChunkExceedsLimit(t *testing.T) {
	t.Parallel()

	const maxSize = 32
	text := "One short sentence. Another one. A third sentence here. " +
		strings.Repeat("w", 80) + ". Tail sentence."

	c := New(maxSize)
	for i, chunk := range c.Split(text) {
		if len(chunk) <= maxSize {
			continue
		}
		// An oversized chunk is only legal when it holds a single sentence.
		inner := strings.TrimSuffix(chunk, ". ")
		if strings.Contains(inner, ". ") {
			t.Errorf("chunk[%d] exceeds %d chars and holds multiple sentences: %q", i, maxSize, chunk)
		}
	}
}

// Test_Split_ReconstructsSentenceContent verifies that stripping the
// synthetic ". " joins from all chunks reproduces the original sentence
// sequence with no loss or duplication.
func Test_Split_ReconstructsSentenceContent(t *testing.T) {
	t.Parallel()

	text := "Stars form in clouds. Gas collapses under gravity. Fusion ignites. The star shines."

	var sentences []string
	for _, s := range strings.Split(text, ". ") {
		sentences = append(sentences, strings.TrimSuffix(s, "."))
	}

	var got []string
	c := New(30)
	for _, chunk := range c.Split(text) {
		for _, s := range strings.Split(chunk, ". ") {
			if s != "" {
				got = append(got, s)
			}
		}
	}

	if len(got) != len(sentences) {
		t.Fatalf("want %d sentences, got %d: %q", len(sentences), len(got), got)
	}
	for i := range sentences {
		if got[i] != sentences[i] {
			t.Errorf("sentence[%d]: want %q, got %q", i, sentences[i], got[i])
		}
	}
}

func Test_New_DefaultsOnNonPositiveSize(t *testing.T) {
	t.Parallel()

	c := New(0)
	if c.maxSize != DefaultChunkSize {
		t.Errorf("want default %d, got %d", DefaultChunkSize, c.maxSize)
	}
}
