package services

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// TextChunker splits guideline documents into pieces small enough to embed.
type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker. Paragraphs are packed together until the
// next one would overflow maxChunkSize runes; a paragraph that is too long on
// its own is packed sentence by sentence instead, and a sentence that is still
// too long is cut into maxChunkSize windows. Each new chunk starts with up to
// overlap runes from the end of the previous one, shortened so the chunk never
// exceeds maxChunkSize.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	p := &chunkPacker{max: maxChunkSize, overlap: overlap}

	for _, para := range strings.Split(normalizeNewlines(text), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= maxChunkSize {
			p.add(para, "\n\n")
			continue
		}

		for _, sentence := range splitIntoSentences(para) {
			for i, window := range splitRunes(sentence, maxChunkSize) {
				sep := " "
				if i > 0 {
					sep = ""
				}
				p.add(window, sep)
			}
		}
	}

	return p.finish()
}

type chunkPacker struct {
	max     int
	overlap int
	chunks  []string
	current strings.Builder
	// size is the rune count of current.
	size int
}

// add expects piece to be at most max runes.
func (p *chunkPacker) add(piece, sep string) {
	pieceLen := utf8.RuneCountInString(piece)
	sepLen := utf8.RuneCountInString(sep)
	if p.size > 0 && p.size+sepLen+pieceLen > p.max {
		p.flush(p.max - sepLen - pieceLen)
	}
	if p.size > 0 {
		p.write(sep)
	}
	p.write(piece)
}

// flush closes the current chunk and seeds the next one with at most room
// runes of overlap.
func (p *chunkPacker) flush(room int) {
	prev := p.current.String()
	p.chunks = append(p.chunks, prev)
	p.current.Reset()
	p.size = 0

	if tail := lastRunes(prev, min(p.overlap, room)); tail != "" {
		p.write(tail)
	}
}

func (p *chunkPacker) write(s string) {
	p.current.WriteString(s)
	p.size += utf8.RuneCountInString(s)
}

func (p *chunkPacker) finish() []string {
	if p.size > 0 {
		p.chunks = append(p.chunks, p.current.String())
	}
	return p.chunks
}

// splitIntoSentences keeps the terminating punctuation on each sentence.
func splitIntoSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// splitRunes cuts text into windows of at most n runes.
func splitRunes(text string, n int) []string {
	if utf8.RuneCountInString(text) <= n {
		return []string{text}
	}
	runes := []rune(text)
	out := make([]string, 0, len(runes)/n+1)
	for len(runes) > n {
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}

func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}
