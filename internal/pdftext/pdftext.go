// Package pdftext extracts plain text from PDF bytes.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Doc is a parsed PDF.
type Doc struct {
	reader *pdf.Reader
}

// Parse reads the document structure from data.
func Parse(data []byte) (doc *Doc, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	return &Doc{reader: reader}, nil
}

// NumPages returns the page count.
func (d *Doc) NumPages() int {
	return d.reader.NumPage()
}

// PageText returns the text of a 1-based page.
func (d *Doc) PageText(n int) (text string, err error) {
	if n < 1 || n > d.NumPages() {
		return "", fmt.Errorf("page %d out of range 1..%d", n, d.NumPages())
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("extract page %d: %v", n, r)
		}
	}()
	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d has no content", n)
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract page %d: %w", n, err)
	}
	return text, nil
}

// FullText returns the text of every page, separated by blank lines.
// Pages that fail to extract are skipped; an error is returned only when
// none succeed.
func (d *Doc) FullText() (string, error) {
	var (
		parts   []string
		lastErr error
	)
	for n := 1; n <= d.NumPages(); n++ {
		text, err := d.PageText(n)
		if err != nil {
			lastErr = err
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 && lastErr != nil {
		return "", fmt.Errorf("extract text: %w", lastErr)
	}
	return strings.Join(parts, "\n\n"), nil
}

// Extract parses data and returns its full text.
func Extract(data []byte) (string, error) {
	doc, err := Parse(data)
	if err != nil {
		return "", err
	}
	return doc.FullText()
}
