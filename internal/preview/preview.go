// Package preview renders PDF pages for the terminal. Pages are drawn as
// wrapped text on a fixed grid; thumbnails replace glyphs with shade blocks.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"

	"github.com/csheth/pdf2ai/internal/apperr"
	"github.com/csheth/pdf2ai/internal/document"
	"github.com/csheth/pdf2ai/internal/pdftext"
)

// RenderOptions sizes and orients a rendered page.
type RenderOptions struct {
	Width     int
	Height    int
	Scale     float64
	Rotation  int
	TextLayer bool
}

// Page is one rendered page.
type Page struct {
	Number int
	Lines  []string
}

// String joins the page lines.
func (p Page) String() string {
	return strings.Join(p.Lines, "\n")
}

// Host opens documents for previewing.
type Host interface {
	Open(ctx context.Context, f document.File) (Handle, error)
}

// Handle is an open document. Close releases everything it holds and must
// be called on every exit path.
type Handle interface {
	PageCount(ctx context.Context) (int, error)
	Render(ctx context.Context, page int, opts RenderOptions) (Page, error)
	Close() error
}

// PDFHost is the Host backed by ledongthuc/pdf and pdfcpu.
type PDFHost struct {
	logger zerolog.Logger
}

// NewHost returns a PDFHost.
func NewHost(logger zerolog.Logger) *PDFHost {
	return &PDFHost{logger: logger.With().Str("component", "preview").Logger()}
}

// Open returns a handle without reading the file; parsing happens on first
// use.
func (h *PDFHost) Open(ctx context.Context, f document.File) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.New(apperr.LoadCancelled, err)
	}
	if f.IsZero() {
		return nil, apperr.New(apperr.RenderingServiceUnavailable, errors.New("no document"))
	}
	return &pdfHandle{file: f, logger: h.logger.With().Str("doc", f.ID().String()).Logger()}, nil
}

type pdfHandle struct {
	file   document.File
	logger zerolog.Logger

	mu      sync.Mutex
	loaded  bool
	loadErr error
	closed  bool
	doc     *pdftext.Doc
	pages   int
	texts   map[int]string
}

func (h *pdfHandle) PageCount(ctx context.Context) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.loadLocked(ctx); err != nil {
		return 0, err
	}
	return h.pages, nil
}

func (h *pdfHandle) Render(ctx context.Context, page int, opts RenderOptions) (Page, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.loadLocked(ctx); err != nil {
		return Page{}, err
	}
	if page < 1 || page > h.pages {
		return Page{}, fmt.Errorf("page %d out of range 1..%d", page, h.pages)
	}
	text, ok := h.texts[page]
	if !ok {
		extracted, err := h.doc.PageText(page)
		if err != nil {
			return Page{}, apperr.New(apperr.RenderingServiceUnavailable, err)
		}
		text = extracted
		h.texts[page] = text
	}
	return Page{Number: page, Lines: Layout(text, opts)}, nil
}

func (h *pdfHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.doc = nil
	h.texts = nil
	h.logger.Debug().Msg("preview handle released")
	return nil
}

func (h *pdfHandle) loadLocked(ctx context.Context) error {
	if h.closed {
		return apperr.New(apperr.LoadCancelled, errors.New("handle closed"))
	}
	if err := ctx.Err(); err != nil {
		return apperr.New(apperr.LoadCancelled, err)
	}
	if h.loaded {
		return h.loadErr
	}
	h.loaded = true
	h.loadErr = h.load()
	if h.loadErr != nil {
		h.logger.Warn().Err(h.loadErr).Msg("preview load failed")
	}
	return h.loadErr
}

func (h *pdfHandle) load() error {
	data, err := h.file.Bytes()
	if err != nil {
		return apperr.New(apperr.UnreadableFile, err)
	}
	probed, probeErr := probePageCount(data)
	if probeErr != nil && classify(probeErr) == apperr.PasswordProtectedPdf {
		return apperr.New(apperr.PasswordProtectedPdf, probeErr)
	}
	doc, err := pdftext.Parse(data)
	if err != nil {
		if probeErr != nil {
			err = fmt.Errorf("%w (probe: %v)", err, probeErr)
		}
		return apperr.New(classify(err), err)
	}
	h.doc = doc
	h.pages = doc.NumPages()
	if probeErr == nil && probed > 0 {
		h.pages = min(probed, doc.NumPages())
	}
	if h.pages <= 0 {
		return apperr.New(apperr.UnsupportedPdfFormat, errors.New("document has no pages"))
	}
	h.texts = make(map[int]string, h.pages)
	h.logger.Debug().Int("pages", h.pages).Bool("probed", probeErr == nil).Msg("preview loaded")
	return nil
}

// probePageCount validates the structure with pdfcpu.
func probePageCount(data []byte) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			count, err = 0, fmt.Errorf("pdfcpu: %v", r)
		}
	}()
	return api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
}

func classify(err error) apperr.Kind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.LoadCancelled
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "password"), strings.Contains(msg, "encrypt"):
		return apperr.PasswordProtectedPdf
	case strings.Contains(msg, "unsupported"), strings.Contains(msg, "not implemented"), strings.Contains(msg, "not supported"):
		return apperr.UnsupportedPdfFormat
	default:
		return apperr.CorruptPdf
	}
}
