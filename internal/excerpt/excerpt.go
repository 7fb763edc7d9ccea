// Package excerpt prepares extracted PDF text for the summarizer: it drops
// page furniture and repeated paragraphs, then clips to a character budget.
package excerpt

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"
)

// Chunk is one kept paragraph.
type Chunk struct {
	ID    string
	Text  string
	Start int
	End   int
}

// Excerpt is the prepared text plus the chunks it was built from.
type Excerpt struct {
	Text    string
	Chunks  []Chunk
	Dropped int
	Clipped bool
}

// Builder trims documents to Budget runes. A zero Budget keeps everything.
type Builder struct {
	Budget int
}

var (
	paragraphSplit   = regexp.MustCompile(`\n[ \t]*\n`)
	whitespaceSanity = regexp.MustCompile(`\s+`)
	pageNumber       = regexp.MustCompile(`^(page\s+)?\d+(\s*(of|/)\s*\d+)?$`)
)

// NewBuilder returns a Builder with the given budget.
func NewBuilder(budget int) *Builder {
	return &Builder{Budget: budget}
}

// Build splits content into paragraphs, removes page numbers and repeats,
// and joins what is left within the budget.
func (b *Builder) Build(content string) Excerpt {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var out Excerpt
	seen := map[string]bool{}
	cursor := 0
	for _, paragraph := range paragraphSplit.Split(content, -1) {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" {
			continue
		}
		if isFurniture(trimmed) {
			out.Dropped++
			continue
		}
		hash := hashChunk(canonicalParagraph(trimmed))
		if seen[hash] {
			out.Dropped++
			continue
		}
		seen[hash] = true
		length := runeLen(trimmed)
		out.Chunks = append(out.Chunks, Chunk{ID: hash, Text: trimmed, Start: cursor, End: cursor + length})
		cursor += length
	}
	out.Text, out.Clipped = clipChunks(out.Chunks, b.Budget)
	return out
}

func canonicalParagraph(text string) string {
	return strings.ToLower(whitespaceSanity.ReplaceAllString(strings.TrimSpace(text), " "))
}

// isFurniture reports paragraphs that carry no content: bare page numbers
// and runs of punctuation or rules.
func isFurniture(paragraph string) bool {
	lower := strings.ToLower(strings.TrimSpace(paragraph))
	if lower == "" || pageNumber.MatchString(lower) {
		return true
	}
	meaningful := 0
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			meaningful++
		}
	}
	return meaningful == 0
}

func hashChunk(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

func clipChunks(chunks []Chunk, budget int) (string, bool) {
	var builder strings.Builder
	if budget <= 0 {
		for idx, chunk := range chunks {
			if idx > 0 {
				builder.WriteString("\n\n")
			}
			builder.WriteString(chunk.Text)
		}
		return builder.String(), false
	}
	remaining := budget
	for idx, chunk := range chunks {
		if remaining <= 0 {
			return builder.String(), true
		}
		if idx > 0 && builder.Len() > 0 {
			if remaining <= 2 {
				return builder.String(), true
			}
			builder.WriteString("\n\n")
			remaining -= 2
		}
		runes := []rune(chunk.Text)
		if len(runes) > remaining {
			builder.WriteString(string(runes[:remaining]))
			return builder.String(), true
		}
		builder.WriteString(chunk.Text)
		remaining -= len(runes)
	}
	return builder.String(), false
}

func runeLen(text string) int {
	return len([]rune(text))
}
