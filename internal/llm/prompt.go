package llm

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyContent is returned when a document has no extractable text.
var ErrEmptyContent = errors.New("document text empty; cannot summarize")

var (
	whitespaceRe = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// tidyText collapses runs of spaces and blank lines left by text extraction.
func tidyText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func buildSummaryPrompt(title, excerpt string) string {
	var b strings.Builder
	b.WriteString("Summarize the following text concisely and clearly.\n")
	b.WriteString("Lead with one sentence on what the document is, then cover its key points.\n\n")
	if title = strings.TrimSpace(title); title != "" {
		b.WriteString("Document: " + title + "\n\n")
	}
	b.WriteString("Content:\n")
	b.WriteString(tidyText(excerpt))
	return b.String()
}
