package tui

import (
	"time"

	"github.com/google/uuid"

	"github.com/csheth/pdf2ai/internal/document"
	"github.com/csheth/pdf2ai/internal/lifecycle"
	"github.com/csheth/pdf2ai/internal/preview"
)

const heroTagline = "Drop a PDF, get the gist."

const (
	minWindowWidth  = 40
	minWindowHeight = 16
	headerHeight    = 2
	footerHeight    = 2
)

const (
	pathPlaceholder = "Path to a PDF (or drag one into the terminal)…"
	idleHint        = "Press o to open a PDF, or drop one into the terminal."
)

// fileChosenMsg carries a file read from a typed or dropped path.
type fileChosenMsg struct {
	path string
	file document.File
	err  error
}

// pageCountMsg reports the previewer's page count for a document.
type pageCountMsg struct {
	docID uuid.UUID
	pages int
	err   error
}

// pageRenderedMsg carries one rendered page for one surface.
type pageRenderedMsg struct {
	docID uuid.UUID
	view  lifecycle.View
	seq   uint64
	page  preview.Page
	req   lifecycle.RenderPage
	err   error
}

// summarizeResultMsg is the outcome of a summarize request.
type summarizeResultMsg struct {
	docID   uuid.UUID
	gen     uint64
	summary string
	err     error
}

// frameMsg is one progress animation frame.
type frameMsg struct {
	docID uuid.UUID
	gen   uint64
	at    time.Time
}

// timerMsg fires a fixed-delay lifecycle transition.
type timerMsg struct {
	timer lifecycle.Timer
	docID uuid.UUID
	gen   uint64
}

// renderedPage is the latest page drawn for a surface.
type renderedPage struct {
	docID    uuid.UUID
	number   int
	scale    float64
	rotation int
	lines    []string
}
