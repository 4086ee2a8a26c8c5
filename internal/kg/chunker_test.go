package kg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChunker(t *testing.T, size, overlap int) *Chunker {
	t.Helper()
	c, err := NewChunker(size, overlap)
	if err != nil && strings.Contains(err.Error(), "tokenizer") {
		// The cl100k_base vocabulary is fetched on first use.
		t.Skipf("tokenizer unavailable: %v", err)
	}
	require.NoError(t, err)
	return c
}

func TestNewChunkerValidation(t *testing.T) {
	_, err := NewChunker(0, 0)
	assert.Error(t, err)

	_, err = NewChunker(100, 100)
	assert.Error(t, err)

	_, err = NewChunker(100, -1)
	assert.Error(t, err)
}

func TestSplitEmptyText(t *testing.T) {
	c := newTestChunker(t, 50, 5)
	assert.Nil(t, c.Split(""))
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	c := newTestChunker(t, 500, 50)
	chunks := c.Split("a short sentence")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short sentence", chunks[0])
}

func TestSplitLongTextOverlaps(t *testing.T) {
	c := newTestChunker(t, 20, 5)

	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 20)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	// Consecutive chunks share the overlap region.
	for i := 1; i < len(chunks); i++ {
		tail := chunks[i-1][len(chunks[i-1])-10:]
		assert.Contains(t, chunks[i], strings.TrimSpace(tail))
	}

	// Concatenating with the overlap removed reproduces the input.
	assert.True(t, strings.HasPrefix(text, chunks[0]))
}
