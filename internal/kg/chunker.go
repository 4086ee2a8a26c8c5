package kg

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Chunker splits text into overlapping token windows using the cl100k_base
// encoding, the tokenizer family the embedding models use.
type Chunker struct {
	encoding *tiktoken.Tiktoken
	size     int
	overlap  int
}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d", overlap)
	}
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}
	return &Chunker{encoding: encoding, size: size, overlap: overlap}, nil
}

// Split returns the chunk texts in document order. The last window may be
// shorter than the configured size.
func (c *Chunker) Split(text string) []string {
	tokens := c.encoding.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []string
	for start := 0; start < len(tokens); start += step {
		end := start + c.size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, c.encoding.Decode(tokens[start:end]))
		if end == len(tokens) {
			break
		}
	}
	return chunks
}
