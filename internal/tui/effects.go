package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/csheth/pdf2ai/internal/apperr"
	"github.com/csheth/pdf2ai/internal/document"
	"github.com/csheth/pdf2ai/internal/lifecycle"
	"github.com/csheth/pdf2ai/internal/preview"
	"github.com/csheth/pdf2ai/internal/summarize"
)

// runEffects executes controller effects. Work that blocks runs as a job;
// bookkeeping happens inline so later effects in the same batch see it.
func (m *model) runEffects(effects []lifecycle.Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, eff := range effects {
		switch e := eff.(type) {
		case lifecycle.LoadDocument:
			cmds = append(cmds, m.loadDocument(e))
		case lifecycle.RenderPage:
			cmds = append(cmds, m.renderPage(e))
		case lifecycle.StartSummarize:
			cmds = append(cmds, m.startSummarize(e))
		case lifecycle.CancelSummarize:
			m.finishRequest(e.Gen)
		case lifecycle.ScheduleTick:
			cmds = append(cmds, scheduleFrame(e))
		case lifecycle.ScheduleTimer:
			cmds = append(cmds, scheduleTimer(e))
		case lifecycle.ReleaseDocument:
			m.releaseDocument(e.DocID)
		}
	}
	return tea.Batch(cmds...)
}

func (m *model) loadDocument(e lifecycle.LoadDocument) tea.Cmd {
	file, ok := m.ctrl.Document()
	if !ok || file.ID() != e.DocID {
		return nil
	}
	handle, err := m.config.Host.Open(m.ctx, file)
	if err != nil {
		docID := e.DocID
		return func() tea.Msg { return pageCountMsg{docID: docID, err: err} }
	}
	m.handles[e.DocID] = handle
	return m.jobs.Start(m.ctx, jobKindLoad, pageCountJob(e.DocID, handle))
}

func (m *model) renderPage(e lifecycle.RenderPage) tea.Cmd {
	handle, ok := m.handles[e.DocID]
	if !ok {
		return nil
	}
	m.renderSeq[e.View]++
	m.pending[e.View] = true
	width, height := m.layout.pageSize(e.View)
	opts := preview.RenderOptions{
		Width:     width,
		Height:    height,
		Scale:     e.Scale,
		Rotation:  e.Rotation,
		TextLayer: e.View != lifecycle.ViewIcon,
	}
	return m.jobs.Start(m.ctx, jobKindRender, renderJob(e, m.renderSeq[e.View], handle, opts))
}

func (m *model) startSummarize(e lifecycle.StartSummarize) tea.Cmd {
	file, ok := m.ctrl.Document()
	if !ok || file.ID() != e.DocID {
		return nil
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.requests[e.Gen] = cancel
	m.notice = "Summarizing " + file.Name() + "…"
	m.logger.Info().Str("file", file.Name()).Uint64("gen", e.Gen).Msg("summarize started")
	return m.jobs.Start(ctx, jobKindSummarize, summarizeJob(m.config.Summarizer, file, e))
}

// finishRequest cancels and forgets the request context for gen.
func (m *model) finishRequest(gen uint64) {
	if cancel, ok := m.requests[gen]; ok {
		cancel()
		delete(m.requests, gen)
	}
}

func (m *model) releaseDocument(docID uuid.UUID) {
	if handle, ok := m.handles[docID]; ok {
		if err := handle.Close(); err != nil {
			m.logger.Warn().Err(err).Str("doc", docID.String()).Msg("release preview failed")
		}
		delete(m.handles, docID)
	}
	for view, page := range m.pages {
		if page.docID == docID {
			delete(m.pages, view)
		}
	}
	for view := range m.pending {
		m.pending[view] = false
	}
}

func scheduleFrame(e lifecycle.ScheduleTick) tea.Cmd {
	return tea.Tick(e.After, func(at time.Time) tea.Msg {
		return frameMsg{docID: e.DocID, gen: e.Gen, at: at}
	})
}

func scheduleTimer(e lifecycle.ScheduleTimer) tea.Cmd {
	return tea.Tick(e.After, func(time.Time) tea.Msg {
		return timerMsg{timer: e.Timer, docID: e.DocID, gen: e.Gen}
	})
}

func openFileJob(path string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		file, err := document.FromPath(path)
		return fileChosenMsg{path: path, file: file, err: err}, err
	}
}

func pageCountJob(docID uuid.UUID, handle preview.Handle) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		pages, err := handle.PageCount(ctx)
		return pageCountMsg{docID: docID, pages: pages, err: err}, err
	}
}

func renderJob(e lifecycle.RenderPage, seq uint64, handle preview.Handle, opts preview.RenderOptions) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		page, err := handle.Render(ctx, e.Page, opts)
		return pageRenderedMsg{docID: e.DocID, view: e.View, seq: seq, page: page, req: e, err: err}, err
	}
}

func summarizeJob(client summarize.Client, file document.File, e lifecycle.StartSummarize) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		if client == nil {
			err := apperr.New(apperr.NetworkError, errors.New("no backend configured"))
			return summarizeResultMsg{docID: e.DocID, gen: e.Gen, err: err}, err
		}
		result, err := client.Summarize(ctx, file)
		return summarizeResultMsg{docID: e.DocID, gen: e.Gen, summary: result.Summary, err: err}, err
	}
}
