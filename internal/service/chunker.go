package service

import "strings"

// DefaultWordsPerChunk is used when the configured size is not positive.
const DefaultWordsPerChunk = 1000

// Chunker splits extracted text into word-bounded segments.
type Chunker struct {
	wordsPerChunk int
}

func NewChunker(wordsPerChunk int) *Chunker {
	if wordsPerChunk < 1 {
		wordsPerChunk = DefaultWordsPerChunk
	}
	return &Chunker{wordsPerChunk: wordsPerChunk}
}

// Chunk returns segments of at most wordsPerChunk words in source order.
// Whitespace-only text yields no segments.
func (c *Chunker) Chunk(rawText string) []string {
	words := strings.Fields(rawText)
	if len(words) == 0 {
		return nil
	}

	segments := make([]string, 0, (len(words)+c.wordsPerChunk-1)/c.wordsPerChunk)
	for start := 0; start < len(words); start += c.wordsPerChunk {
		end := min(start+c.wordsPerChunk, len(words))
		segments = append(segments, strings.Join(words[start:end], " "))
	}
	return segments
}
