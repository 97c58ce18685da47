package textproc

import (
	"strings"
	"unicode/utf8"

	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits email text into overlapping windows, preferring to
// break at paragraph or sentence boundaries near the window edge.
type Chunker struct{}

// NewChunker creates a new chunker.
func NewChunker() *Chunker {
	return &Chunker{}
}

// Chunk splits content into overlapping chunks per opts.
func (c *Chunker) Chunk(content string, opts driven.ChunkOptions) []driven.ChunkResult {
	if opts.MaxChunkSize <= 0 {
		opts = driven.DefaultChunkOptions()
	}

	if len(content) <= opts.MaxChunkSize {
		if content == "" {
			return nil
		}
		return []driven.ChunkResult{{
			Content:   content,
			StartChar: 0,
			EndChar:   len(content),
			Position:  0,
		}}
	}

	var chunks []driven.ChunkResult
	start := 0
	position := 0

	for start < len(content) {
		end := start + opts.MaxChunkSize
		if end > len(content) {
			end = len(content)
		} else {
			end = runeStart(content, end)
		}

		if end < len(content) {
			if bp := findBreakPoint(content, start, end); bp > start {
				end = bp
			}
		}

		chunks = append(chunks, driven.ChunkResult{
			Content:   content[start:end],
			StartChar: start,
			EndChar:   end,
			Position:  position,
		})
		position++

		if end >= len(content) {
			break
		}

		// Move start with overlap, ensuring we always advance
		nextStart := runeStart(content, end-opts.Overlap)
		if nextStart <= start {
			nextStart = start + 1
			for nextStart < len(content) && !utf8.RuneStart(content[nextStart]) {
				nextStart++
			}
		}
		start = nextStart
	}

	return chunks
}

// findBreakPoint looks for a paragraph, sentence, or word boundary in
// the last 100 characters before maxEnd.
func findBreakPoint(content string, start, maxEnd int) int {
	searchStart := maxEnd - 100
	if searchStart < start {
		searchStart = start
	}

	window := content[searchStart:maxEnd]

	if idx := strings.LastIndex(window, "\n\n"); idx != -1 {
		return searchStart + idx + 2
	}

	best := -1
	for _, ender := range []string{". ", "! ", "? ", ".\n", "!\n", "?\n"} {
		if idx := strings.LastIndex(window, ender); idx != -1 {
			if pos := idx + len(ender); pos > best {
				best = pos
			}
		}
	}
	if best > 0 {
		return searchStart + best
	}

	if idx := strings.LastIndex(window, " "); idx != -1 {
		return searchStart + idx + 1
	}

	return maxEnd
}

// Truncate cuts s to at most max bytes without splitting a rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:runeStart(s, max)]
}

// runeStart backs i off to the start of the rune containing it.
func runeStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
