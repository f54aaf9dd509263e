// Package splitters turns extracted document text into retrieval-sized chunks.
package splitters

import "strings"

// Default chunking parameters, in characters.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// ParagraphSplitter splits text into overlapping chunks without breaking
// paragraphs. Paragraph boundaries are the newlines of the source text, so
// the splitter must run before any whitespace-flattening cleanup.
type ParagraphSplitter struct {
	ChunkSize int // soft upper bound; a chunk may exceed it by one paragraph
	Overlap   int // tail characters carried into the next chunk
}

// NewParagraphSplitter creates a splitter, falling back to the defaults when
// the given parameters are unusable (overlap must stay below chunk size).
func NewParagraphSplitter(chunkSize, overlap int) *ParagraphSplitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 5
		}
	}
	return &ParagraphSplitter{ChunkSize: chunkSize, Overlap: overlap}
}

// SplitText splits text into ordered chunks. Paragraphs accumulate into a
// buffer until adding the next one would exceed ChunkSize; the buffer is then
// flushed as a chunk and the next buffer is seeded with the trailing Overlap
// characters of the previous one. The last buffer is flushed as the final
// chunk. Flushed chunks are trimmed and whitespace-only chunks are dropped.
// Empty input yields nil. The output is deterministic.
func (s *ParagraphSplitter) SplitText(text string) []string {
	if text == "" {
		return nil
	}

	paragraphs := strings.Split(text, "\n")
	var chunks []string
	current := ""

	for _, paragraph := range paragraphs {
		if len(current)+len(paragraph) <= s.ChunkSize {
			current += paragraph + "\n"
			continue
		}

		if trimmed := strings.TrimSpace(current); trimmed != "" {
			chunks = append(chunks, trimmed)
		}

		// Seed the next buffer with the tail of the previous one so adjacent
		// chunks share context. Short buffers carry nothing over.
		if len(current) > s.Overlap {
			current = tail(current, s.Overlap) + paragraph + "\n"
		} else {
			current = paragraph + "\n"
		}
	}

	if trimmed := strings.TrimSpace(current); trimmed != "" {
		chunks = append(chunks, trimmed)
	}

	return chunks
}

// tail returns the last n characters of s without splitting a multi-byte
// rune. When s fits within n bytes it is returned whole.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := len(s) - n
	for cut < len(s) && !isRuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
