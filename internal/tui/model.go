package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rs/zerolog"

	"github.com/csheth/pdf2ai/internal/apperr"
	"github.com/csheth/pdf2ai/internal/lifecycle"
	"github.com/csheth/pdf2ai/internal/preview"
	"github.com/csheth/pdf2ai/internal/summarize"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Controller lifecycle.Config
	Host       preview.Host
	Summarizer summarize.Client
	Logger     zerolog.Logger
	// InitialPath is opened on start when set.
	InitialPath string
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Host == nil {
		config.Host = preview.NewHost(config.Logger)
	}

	pathInput := textinput.New()
	pathInput.Placeholder = pathPlaceholder
	pathInput.CharLimit = 1024
	pathInput.Width = 60

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = iconWidth

	overlay := viewport.New(60, 10)
	overlay.MouseWheelEnabled = true

	ctx, cancel := context.WithCancel(context.Background())
	m := &model{
		config:    config,
		ctrl:      lifecycle.NewController(config.Controller),
		jobs:      newJobBus(config.Logger),
		logger:    config.Logger.With().Str("component", "tui").Logger(),
		ctx:       ctx,
		cancel:    cancel,
		keys:      defaultKeyMap(),
		layout:    newScreenLayout(),
		pathInput: pathInput,
		spinner:   spin,
		progress:  bar,
		overlay:   overlay,
		handles:   map[uuid.UUID]preview.Handle{},
		requests:  map[uint64]context.CancelFunc{},
		pages:     map[lifecycle.View]renderedPage{},
		renderSeq: map[lifecycle.View]uint64{},
		pending:   map[lifecycle.View]bool{},
		notice:    idleHint,
	}
	m.resizeOverlay()
	return m
}

type model struct {
	config Config
	ctrl   *lifecycle.Controller
	jobs   *jobBus
	logger zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	keys   keyMap
	layout screenLayout

	pathInput  textinput.Model
	pathActive bool
	spinner    spinner.Model
	progress   progress.Model
	overlay    viewport.Model

	handles   map[uuid.UUID]preview.Handle
	requests  map[uint64]context.CancelFunc
	pages     map[lifecycle.View]renderedPage
	renderSeq map[lifecycle.View]uint64
	pending   map[lifecycle.View]bool

	runningJobs    int
	notice         string
	errorMessage   string
	overlaySummary string
	quitting       bool
}

func (m *model) Init() tea.Cmd {
	if path := cleanPath(m.config.InitialPath); path != "" {
		return tea.Batch(m.spinner.Tick, m.openPath(path))
	}
	return m.spinner.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.resizeOverlay()
		return m, m.apply(m.ctrl.Refresh())
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		m.runningJobs++
		if m.runningJobs == 1 {
			return m, m.spinner.Tick
		}
		return m, nil
	case jobResultEnvelope:
		if m.runningJobs > 0 {
			m.runningJobs--
		}
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case fileChosenMsg:
		return m, m.handleFileChosen(msg)
	case pageCountMsg:
		if msg.err != nil {
			return m, m.apply(m.ctrl.LoadFailed(msg.docID, msg.err))
		}
		return m, m.apply(m.ctrl.PageCountKnown(msg.docID, msg.pages))
	case pageRenderedMsg:
		return m, m.handlePageRendered(msg)
	case summarizeResultMsg:
		m.finishRequest(msg.gen)
		if msg.err != nil {
			cmd := m.apply(m.ctrl.SummarizeFailed(msg.docID, msg.gen, msg.err))
			if failure := m.ctrl.State().Failure; failure != nil && m.ctrl.State().Presented() == lifecycle.ErrorState {
				m.notice = failure.Message + " Press s to retry."
			}
			return m, cmd
		}
		cmd := m.apply(m.ctrl.SummarizeSucceeded(msg.docID, msg.gen, msg.summary))
		if m.ctrl.State().HasSummary {
			m.notice = "Summary ready. Press tab to read it."
		}
		return m, cmd
	case frameMsg:
		return m, m.apply(m.ctrl.Tick(msg.docID, msg.gen, msg.at))
	case timerMsg:
		return m, m.apply(m.ctrl.TimerFired(msg.timer, msg.docID, msg.gen))
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.quit()
	}
	if m.pathActive {
		return m.handlePathKey(msg)
	}
	if msg.Paste {
		// Terminals deliver a file dropped onto the window as a pasted path.
		if path := cleanPath(string(msg.Runes)); path != "" {
			return m, m.openPath(path)
		}
		return m, nil
	}

	st := m.ctrl.State()
	if st.SummaryOverlay && !st.Mode.IsFullView() {
		switch {
		case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown),
			key.Matches(msg, m.keys.Prev), key.Matches(msg, m.keys.Next):
			var cmd tea.Cmd
			m.overlay, cmd = m.overlay.Update(msg)
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Escape):
		return m, m.apply(m.ctrl.Escape())
	case key.Matches(msg, m.keys.Open):
		return m, m.startPathInput()
	case key.Matches(msg, m.keys.Summarize):
		return m, m.apply(m.ctrl.Summarize())
	case key.Matches(msg, m.keys.Expand):
		return m, m.apply(m.ctrl.ToggleExpand())
	case key.Matches(msg, m.keys.Show):
		if st.Mode == lifecycle.ModalOpen {
			return m, m.apply(m.ctrl.CloseModal())
		}
		return m, m.apply(m.ctrl.ShowModal())
	case key.Matches(msg, m.keys.Delete):
		return m, m.deleteDocument()
	case key.Matches(msg, m.keys.Overlay):
		return m, m.apply(m.ctrl.ToggleSummaryOverlay())
	case key.Matches(msg, m.keys.Details):
		return m, m.apply(m.ctrl.ToggleDetails())
	case key.Matches(msg, m.keys.Prev):
		return m, m.apply(m.ctrl.PrevPage())
	case key.Matches(msg, m.keys.Next):
		return m, m.apply(m.ctrl.NextPage())
	case key.Matches(msg, m.keys.ZoomIn):
		return m, m.apply(m.ctrl.ZoomIn())
	case key.Matches(msg, m.keys.ZoomOut):
		return m, m.apply(m.ctrl.ZoomOut())
	case key.Matches(msg, m.keys.Rotate):
		return m, m.apply(m.ctrl.Rotate())
	case key.Matches(msg, m.keys.Menu):
		if st.MenuVisible {
			return m, m.apply(m.ctrl.HoverLeave())
		}
		return m, m.apply(m.ctrl.HoverEnter())
	case key.Matches(msg, m.keys.MenuSummarize):
		return m, m.menuSelect(lifecycle.MenuSummarize)
	case key.Matches(msg, m.keys.MenuShow):
		return m, m.menuSelect(lifecycle.MenuShow)
	case key.Matches(msg, m.keys.MenuDelete):
		return m, m.menuSelect(lifecycle.MenuDelete)
	}
	return m, nil
}

func (m *model) handlePathKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePathInput()
		return m, nil
	case tea.KeyEnter:
		path := cleanPath(m.pathInput.Value())
		m.closePathInput()
		if path == "" {
			return m, nil
		}
		return m, m.openPath(path)
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *model) startPathInput() tea.Cmd {
	if m.ctrl.State().Mode.IsFullView() {
		return nil
	}
	m.pathActive = true
	m.pathInput.SetValue("")
	m.errorMessage = ""
	return m.pathInput.Focus()
}

func (m *model) closePathInput() {
	m.pathActive = false
	m.pathInput.Blur()
	m.pathInput.SetValue("")
}

func (m *model) openPath(path string) tea.Cmd {
	m.errorMessage = ""
	m.notice = "Opening " + filepath.Base(path) + "…"
	return m.jobs.Start(m.ctx, jobKindOpen, openFileJob(path))
}

func (m *model) handleFileChosen(msg fileChosenMsg) tea.Cmd {
	if msg.err != nil {
		failure := apperr.Ensure(msg.err, apperr.UnreadableFile)
		m.errorMessage = failure.Message + ": " + msg.path
		m.notice = idleHint
		m.logger.Warn().Err(msg.err).Str("path", msg.path).Msg("open failed")
		return nil
	}
	m.errorMessage = ""
	cmd := m.apply(m.ctrl.Select(msg.file))
	st := m.ctrl.State()
	switch {
	case st.HasDocument():
		m.notice = "Loaded " + st.FileName + ". Press s to summarize."
	case st.Failure != nil:
		m.notice = st.Failure.Message
	}
	m.logger.Info().Str("file", msg.file.Name()).Bool("accepted", st.HasDocument()).Msg("file selected")
	return cmd
}

func (m *model) handlePageRendered(msg pageRenderedMsg) tea.Cmd {
	if msg.seq != m.renderSeq[msg.view] || msg.docID != m.ctrl.State().DocumentID {
		return nil
	}
	m.pending[msg.view] = false
	if msg.err != nil {
		return m.apply(m.ctrl.RenderFailed(msg.docID, msg.req.Page, msg.err))
	}
	m.pages[msg.view] = renderedPage{
		docID:    msg.docID,
		number:   msg.page.Number,
		scale:    msg.req.Scale,
		rotation: msg.req.Rotation,
		lines:    msg.page.Lines,
	}
	return m.apply(m.ctrl.PageRendered(msg.docID, msg.req.Page))
}

func (m *model) menuSelect(item lifecycle.MenuItem) tea.Cmd {
	if !m.ctrl.State().MenuVisible {
		return nil
	}
	if item == lifecycle.MenuDelete {
		m.notice = "Document removed. " + idleHint
	}
	return m.apply(m.ctrl.MenuSelect(item))
}

func (m *model) deleteDocument() tea.Cmd {
	if !m.ctrl.State().HasDocument() && m.ctrl.State().Failure == nil {
		return nil
	}
	m.notice = "Document removed. " + idleHint
	return m.apply(m.ctrl.Delete())
}

// apply runs the controller's effects and refreshes derived view state.
func (m *model) apply(effects []lifecycle.Effect) tea.Cmd {
	cmd := m.runEffects(effects)
	m.syncOverlay()
	return cmd
}

func (m *model) syncOverlay() {
	summary := m.ctrl.State().Summary
	if summary == m.overlaySummary {
		return
	}
	m.overlaySummary = summary
	m.overlay.SetContent(wordwrap.String(summary, max(10, m.overlay.Width)))
	m.overlay.GotoTop()
}

func (m *model) resizeOverlay() {
	r := m.layout.overlayRect()
	m.overlay.Width = max(10, r.w-4)
	m.overlay.Height = max(3, r.h-4)
	m.overlaySummary = ""
	m.syncOverlay()
	m.pathInput.Width = max(20, min(70, m.layout.width-12))
}

func (m *model) busy() bool {
	return m.runningJobs > 0 || m.ctrl.Outstanding()
}

// quit cancels outstanding work and releases every open handle.
func (m *model) quit() tea.Cmd {
	if m.quitting {
		return tea.Quit
	}
	m.quitting = true
	for gen, cancel := range m.requests {
		cancel()
		delete(m.requests, gen)
	}
	for id := range m.handles {
		m.releaseDocument(id)
	}
	m.cancel()
	return tea.Quit
}

// cleanPath normalizes a typed or dropped path: surrounding quotes, file://
// prefixes, shell escapes and a leading ~ are handled.
func cleanPath(raw string) string {
	path := strings.TrimSpace(raw)
	if len(path) >= 2 {
		first, last := path[0], path[len(path)-1]
		if (first == '\'' || first == '"') && last == first {
			path = path[1 : len(path)-1]
		}
	}
	path = strings.TrimPrefix(path, "file://")
	path = strings.ReplaceAll(path, `\ `, " ")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return strings.TrimSpace(path)
}
