// Package lifecycle holds the document state machine. The Controller is
// pure: every event method mutates State and returns the Effects the host
// must run. Results of asynchronous work come back as events tagged with the
// document id and request generation, and anything that no longer matches
// the active document is dropped.
package lifecycle

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/csheth/pdf2ai/internal/apperr"
	"github.com/csheth/pdf2ai/internal/document"
	"github.com/csheth/pdf2ai/internal/progress"
	"github.com/csheth/pdf2ai/internal/validate"
)

const (
	DefaultScanHideDelay = time.Second
	DefaultAutoOpenDelay = 1500 * time.Millisecond
)

// Config tunes timing and thresholds.
type Config struct {
	Estimator       progress.Estimator
	FrameInterval   time.Duration
	ScanHideDelay   time.Duration
	AutoOpenSummary bool
	AutoOpenDelay   time.Duration
	DragThreshold   float64
	Validator       validate.Validator
	Clock           func() time.Time
}

// DefaultConfig returns the stock timings with auto-open enabled.
func DefaultConfig() Config {
	return Config{
		Estimator:       progress.New(progress.DefaultDuration),
		FrameInterval:   progress.FrameInterval,
		ScanHideDelay:   DefaultScanHideDelay,
		AutoOpenSummary: true,
		AutoOpenDelay:   DefaultAutoOpenDelay,
		DragThreshold:   DefaultDragThreshold,
		Validator:       validate.New(validate.DefaultMaxSize),
		Clock:           time.Now,
	}
}

func (c Config) withDefaults() Config {
	if c.Estimator.Duration <= 0 {
		c.Estimator = progress.New(progress.DefaultDuration)
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = progress.FrameInterval
	}
	if c.ScanHideDelay <= 0 {
		c.ScanHideDelay = DefaultScanHideDelay
	}
	if c.AutoOpenDelay <= 0 {
		c.AutoOpenDelay = DefaultAutoOpenDelay
	}
	if c.DragThreshold <= 0 {
		c.DragThreshold = DefaultDragThreshold
	}
	if c.Validator.MaxSize <= 0 {
		c.Validator = validate.New(validate.DefaultMaxSize)
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// MenuItem is an entry of the icon's context menu.
type MenuItem int

const (
	MenuSummarize MenuItem = iota
	MenuShow
	MenuDelete
)

// MenuItems lists the context menu in display order.
var MenuItems = []MenuItem{MenuSummarize, MenuShow, MenuDelete}

func (i MenuItem) String() string {
	switch i {
	case MenuShow:
		return "Show"
	case MenuDelete:
		return "Delete"
	default:
		return "Summarize"
	}
}

// Controller owns the lifecycle state of at most one document.
type Controller struct {
	cfg     Config
	state   State
	doc     document.File
	gesture *Gesture

	gen         uint64
	inflight    bool
	run         *progress.Run
	tickPending bool
}

// NewController returns a controller in NoDocument.
func NewController(cfg Config) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		cfg:     cfg,
		state:   emptyState(),
		gesture: NewGesture(cfg.DragThreshold),
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

// Document returns the active document.
func (c *Controller) Document() (document.File, bool) {
	return c.doc, !c.doc.IsZero()
}

// Generation is the id of the most recent summarize request.
func (c *Controller) Generation() uint64 { return c.gen }

// Outstanding reports whether a summarize request is in flight.
func (c *Controller) Outstanding() bool { return c.inflight }

// GestureActive reports whether a pointer press is being tracked.
func (c *Controller) GestureActive() bool { return c.gesture.Active() }

// GesturePhase exposes the recognizer state.
func (c *Controller) GesturePhase() GesturePhase { return c.gesture.Phase() }

// Select replaces the active document with f. The previous document is
// always torn down first; f is then validated.
func (c *Controller) Select(f document.File) []Effect {
	effects := c.Delete()
	res := c.cfg.Validator.Validate(f)
	if !res.Valid() {
		c.state.Mode = ErrorState
		c.state.Base = ErrorState
		c.state.Failure = res.Failure()
		c.state.FileName = f.Name()
		c.state.FileSize = f.Size()
		return effects
	}
	c.doc = f
	c.state.Mode = Previewing
	c.state.Base = Previewing
	c.state.DocumentID = f.ID()
	c.state.FileName = f.Name()
	c.state.FileSize = f.Size()
	return append(effects, LoadDocument{DocID: f.ID()}, c.render(ViewIcon))
}

// Delete cancels all pending work, releases the document and resets to
// NoDocument.
func (c *Controller) Delete() []Effect {
	var effects []Effect
	if c.inflight {
		effects = append(effects, CancelSummarize{DocID: c.doc.ID(), Gen: c.gen})
	}
	if !c.doc.IsZero() {
		effects = append(effects, ReleaseDocument{DocID: c.doc.ID()})
	}
	c.gen++
	c.inflight = false
	c.run = nil
	c.tickPending = false
	c.doc = document.File{}
	c.gesture.Reset()
	c.state = emptyState()
	return effects
}

// Summarize starts a request. It is accepted from Previewing, from
// SummaryReady to regenerate, and from ErrorState as a retry. A request
// already in flight makes it a no-op.
func (c *Controller) Summarize() []Effect {
	if !c.state.HasDocument() || c.inflight {
		return nil
	}
	switch c.state.Mode {
	case Previewing, SummaryReady, ErrorState:
	default:
		return nil
	}
	c.gen++
	c.inflight = true
	c.run = c.cfg.Estimator.Start(c.cfg.Clock())
	c.tickPending = true
	c.state.Mode = Scanning
	c.state.Base = Scanning
	c.state.Progress = 0
	c.state.Summary = ""
	c.state.HasSummary = false
	c.state.Failure = nil
	c.state.ShowDetails = false
	c.state.ScanLineVisible = true
	c.state.SummaryOverlay = false
	c.state.MenuVisible = false
	id := c.doc.ID()
	return []Effect{
		StartSummarize{DocID: id, Gen: c.gen},
		ScheduleTick{DocID: id, Gen: c.gen, After: c.cfg.FrameInterval},
	}
}

// Tick advances the progress estimate. Ticks stop while a full view covers
// the icon and once the estimate reaches 1.
func (c *Controller) Tick(docID uuid.UUID, gen uint64, at time.Time) []Effect {
	if !c.current(docID, gen) || !c.inflight {
		return nil
	}
	c.tickPending = false
	if c.state.Mode != Scanning {
		return nil
	}
	c.state.Progress = c.run.Advance(at)
	if c.state.Progress >= 1 {
		return nil
	}
	c.tickPending = true
	return []Effect{ScheduleTick{DocID: docID, Gen: gen, After: c.cfg.FrameInterval}}
}

// SummarizeSucceeded stores the summary and schedules the scan line to
// hide and, when configured, the overlay to open.
func (c *Controller) SummarizeSucceeded(docID uuid.UUID, gen uint64, summary string) []Effect {
	if !c.current(docID, gen) || !c.inflight {
		return nil
	}
	c.finishRequest()
	c.state.Summary = summary
	c.state.HasSummary = true
	c.state.Progress = 1
	c.state.ScanLineVisible = true
	c.setPresented(SummaryReady)
	effects := []Effect{
		ScheduleTimer{Timer: TimerScanHide, DocID: docID, Gen: gen, After: c.cfg.ScanHideDelay},
	}
	if c.cfg.AutoOpenSummary {
		effects = append(effects, ScheduleTimer{Timer: TimerAutoOpen, DocID: docID, Gen: gen, After: c.cfg.AutoOpenDelay})
	}
	return effects
}

// SummarizeFailed records the failure. The document stays loaded.
func (c *Controller) SummarizeFailed(docID uuid.UUID, gen uint64, err error) []Effect {
	if !c.current(docID, gen) || !c.inflight {
		return nil
	}
	if err == nil {
		err = errors.New("summarize failed without an error")
	}
	c.finishRequest()
	c.state.Failure = apperr.Ensure(err, apperr.ServerError)
	c.state.Progress = 0
	c.state.ScanLineVisible = false
	c.setPresented(ErrorState)
	return nil
}

// TimerFired applies a fixed-delay transition.
func (c *Controller) TimerFired(timer Timer, docID uuid.UUID, gen uint64) []Effect {
	if !c.current(docID, gen) {
		return nil
	}
	switch timer {
	case TimerScanHide:
		if c.state.Presented() == SummaryReady {
			c.state.ScanLineVisible = false
		}
	case TimerAutoOpen:
		if c.state.Mode == SummaryReady {
			c.state.SummaryOverlay = true
			c.state.MenuVisible = false
		}
	}
	return nil
}

// PageCountKnown records the page count and clamps page cursors.
func (c *Controller) PageCountKnown(docID uuid.UUID, count int) []Effect {
	if !c.isActive(docID) {
		return nil
	}
	if count <= 0 {
		return c.LoadFailed(docID, apperr.New(apperr.UnsupportedPdfFormat, fmt.Errorf("document reports %d pages", count)))
	}
	c.state.PageCount = count
	c.state.CurrentPage = clamp(c.state.CurrentPage, 1, count)
	c.state.ModalPage = clamp(c.state.ModalPage, 1, count)
	return nil
}

// LoadFailed records a document-level previewer failure. The document
// stays and navigation remains disabled.
func (c *Controller) LoadFailed(docID uuid.UUID, err error) []Effect {
	if !c.isActive(docID) {
		return nil
	}
	c.state.LoadFailure = apperr.Ensure(err, apperr.CorruptPdf)
	c.state.PageCount = 0
	return nil
}

// RenderFailed records a failure for one page only.
func (c *Controller) RenderFailed(docID uuid.UUID, page int, err error) []Effect {
	if !c.isActive(docID) {
		return nil
	}
	c.state.PageError = apperr.Ensure(err, apperr.RenderingServiceUnavailable)
	c.state.PageErrorPage = page
	return nil
}

// PageRendered clears a page error once that page renders.
func (c *Controller) PageRendered(docID uuid.UUID, page int) []Effect {
	if !c.isActive(docID) {
		return nil
	}
	if c.state.PageError != nil && c.state.PageErrorPage == page {
		c.state.PageError = nil
		c.state.PageErrorPage = 0
	}
	return nil
}

// Expand opens the in-place full view. An open modal closes first.
func (c *Controller) Expand() []Effect {
	if !c.state.HasDocument() || c.state.Mode == Expanded {
		return nil
	}
	switch c.state.Presented() {
	case Previewing, SummaryReady, ErrorState:
	default:
		return nil
	}
	var effects []Effect
	if c.state.Mode == ModalOpen {
		effects = c.CloseModal()
	}
	c.state.Base = c.state.Mode
	c.state.Mode = Expanded
	c.state.CurrentPage = 1
	c.enterFullView()
	return append(effects, c.render(ViewFull))
}

// Collapse leaves Expanded for the prior mode.
func (c *Controller) Collapse() []Effect {
	if c.state.Mode != Expanded {
		return nil
	}
	c.state.Mode = c.state.Base
	c.state.CurrentPage = 1
	return []Effect{c.render(ViewIcon)}
}

// ToggleExpand expands or collapses.
func (c *Controller) ToggleExpand() []Effect {
	if c.state.Mode == Expanded {
		return c.Collapse()
	}
	return c.Expand()
}

// ShowModal opens the detached full view. Expanded collapses first.
func (c *Controller) ShowModal() []Effect {
	if !c.state.HasDocument() || c.state.Mode == ModalOpen {
		return nil
	}
	var effects []Effect
	if c.state.Mode == Expanded {
		effects = c.Collapse()
	}
	c.state.Base = c.state.Mode
	c.state.Mode = ModalOpen
	c.state.ModalPage = 1
	c.enterFullView()
	return append(effects, c.render(ViewModal))
}

// CloseModal returns to the prior mode. A suspended progress animation
// resumes from the request's original start.
func (c *Controller) CloseModal() []Effect {
	if c.state.Mode != ModalOpen {
		return nil
	}
	c.state.Mode = c.state.Base
	c.state.ModalPage = 1
	effects := []Effect{c.render(ViewIcon)}
	if c.state.Mode == Scanning && c.inflight && !c.tickPending && c.run.Value() < 1 {
		c.tickPending = true
		effects = append(effects, ScheduleTick{DocID: c.doc.ID(), Gen: c.gen, After: c.cfg.FrameInterval})
	}
	return effects
}

// Escape closes the innermost open surface.
func (c *Controller) Escape() []Effect {
	switch {
	case c.state.Mode == ModalOpen:
		return c.CloseModal()
	case c.state.Mode == Expanded:
		return c.Collapse()
	case c.state.SummaryOverlay:
		c.state.SummaryOverlay = false
	case c.state.MenuVisible:
		c.state.MenuVisible = false
	case c.state.ShowDetails:
		c.state.ShowDetails = false
	}
	return nil
}

// PrevPage moves the open full view back one page.
func (c *Controller) PrevPage() []Effect { return c.turnPage(-1) }

// NextPage moves the open full view forward one page.
func (c *Controller) NextPage() []Effect { return c.turnPage(1) }

func (c *Controller) turnPage(delta int) []Effect {
	if !c.state.CanNavigate() {
		return nil
	}
	cursor, view := &c.state.CurrentPage, ViewFull
	if c.state.Mode == ModalOpen {
		cursor, view = &c.state.ModalPage, ViewModal
	}
	next := clamp(*cursor+delta, 1, c.state.PageCount)
	if next == *cursor {
		return nil
	}
	*cursor = next
	return []Effect{c.render(view)}
}

// ZoomIn enlarges the open full view.
func (c *Controller) ZoomIn() []Effect { return c.zoom(ScaleStep) }

// ZoomOut shrinks the open full view.
func (c *Controller) ZoomOut() []Effect { return c.zoom(-ScaleStep) }

func (c *Controller) zoom(step float64) []Effect {
	if !c.state.Mode.IsFullView() {
		return nil
	}
	next := math.Round((c.state.Scale+step)*10) / 10
	next = math.Max(MinScale, math.Min(MaxScale, next))
	if next == c.state.Scale {
		return nil
	}
	c.state.Scale = next
	return []Effect{c.render(c.fullView())}
}

// Rotate turns the open full view by 90 degrees.
func (c *Controller) Rotate() []Effect {
	if !c.state.Mode.IsFullView() {
		return nil
	}
	c.state.Rotation = (c.state.Rotation + 90) % 360
	return []Effect{c.render(c.fullView())}
}

// HoverEnter shows the context menu.
func (c *Controller) HoverEnter() []Effect {
	if c.state.HasDocument() && !c.state.Mode.IsFullView() && c.gesture.Phase() != GestureDragging {
		c.state.MenuVisible = true
	}
	return nil
}

// HoverLeave hides the context menu.
func (c *Controller) HoverLeave() []Effect {
	c.state.MenuVisible = false
	return nil
}

// MenuSelect runs a context menu entry and hides the menu.
func (c *Controller) MenuSelect(item MenuItem) []Effect {
	if !c.state.MenuVisible {
		return nil
	}
	c.state.MenuVisible = false
	switch item {
	case MenuSummarize:
		return c.Summarize()
	case MenuShow:
		return c.ShowModal()
	case MenuDelete:
		return c.Delete()
	}
	return nil
}

// ToggleSummaryOverlay opens or closes the summary overlay.
func (c *Controller) ToggleSummaryOverlay() []Effect {
	if c.state.Mode == SummaryReady {
		c.state.SummaryOverlay = !c.state.SummaryOverlay
	}
	return nil
}

// ToggleDetails shows or hides the technical detail of the current failure.
func (c *Controller) ToggleDetails() []Effect {
	if c.state.Diagnostic() != nil {
		c.state.ShowDetails = !c.state.ShowDetails
	}
	return nil
}

// PointerDown starts tracking a press on the icon.
func (c *Controller) PointerDown(p Vec) []Effect {
	if !c.state.HasDocument() || c.state.Mode.IsFullView() {
		return nil
	}
	c.gesture.Down(p)
	c.state.DragOffset = Vec{}
	return nil
}

// PointerMove follows the pointer while pressed.
func (c *Controller) PointerMove(p Vec) []Effect {
	offset, ok := c.gesture.Move(p)
	if !ok {
		return nil
	}
	c.state.DragOffset = offset
	if c.gesture.Phase() == GestureDragging {
		c.state.MenuVisible = false
	}
	return nil
}

// PointerUp ends the press. A drag commits the new position and swallows
// the click; a click expands.
func (c *Controller) PointerUp(p Vec) []Effect {
	outcome, offset := c.gesture.Up(p)
	c.state.DragOffset = Vec{}
	switch outcome {
	case OutcomeDrag:
		c.state.Position = c.state.Position.Add(offset)
		return nil
	case OutcomeClick:
		return c.Expand()
	}
	return nil
}

// Refresh re-requests every visible page, for example after a resize.
func (c *Controller) Refresh() []Effect {
	if !c.state.HasDocument() {
		return nil
	}
	effects := []Effect{c.render(ViewIcon)}
	if c.state.Mode.IsFullView() {
		effects = append(effects, c.render(c.fullView()))
	}
	return effects
}

// CheckInvariants reports the first broken state invariant.
func (c *Controller) CheckInvariants() error {
	s := c.state
	presented := s.Presented()
	switch {
	case s.Mode.IsFullView() && s.Base.IsFullView():
		return fmt.Errorf("full view %s stacked on %s", s.Mode, s.Base)
	case !s.Mode.IsFullView() && s.Base != s.Mode:
		return fmt.Errorf("base %s differs from mode %s outside a full view", s.Base, s.Mode)
	case s.Mode.IsFullView() && !s.HasDocument():
		return fmt.Errorf("%s without a document", s.Mode)
	case (presented == Scanning) != c.inflight:
		return fmt.Errorf("mode %s with outstanding=%v", presented, c.inflight)
	case presented == SummaryReady && !s.HasSummary:
		return errors.New("SummaryReady without a summary")
	case presented == ErrorState && (c.inflight || s.HasSummary):
		return errors.New("ErrorState with a request or summary")
	case presented == ErrorState && s.Failure == nil:
		return errors.New("ErrorState without a failure")
	case s.Mode == NoDocument && (s.HasDocument() || !c.doc.IsZero() || s.HasSummary):
		return errors.New("NoDocument carries document data")
	case s.Progress < 0 || s.Progress > 1:
		return fmt.Errorf("progress %f out of range", s.Progress)
	case s.CurrentPage < 1 || s.ModalPage < 1:
		return fmt.Errorf("page cursor below 1 (%d, %d)", s.CurrentPage, s.ModalPage)
	case s.PageCount > 0 && (s.CurrentPage > s.PageCount || s.ModalPage > s.PageCount):
		return fmt.Errorf("page cursor beyond %d (%d, %d)", s.PageCount, s.CurrentPage, s.ModalPage)
	case s.Mode.IsFullView() && s.MenuVisible:
		return errors.New("menu visible over a full view")
	}
	return nil
}

func (c *Controller) current(docID uuid.UUID, gen uint64) bool {
	return c.isActive(docID) && gen == c.gen
}

func (c *Controller) isActive(docID uuid.UUID) bool {
	return docID != uuid.Nil && docID == c.state.DocumentID
}

func (c *Controller) finishRequest() {
	c.inflight = false
	c.run = nil
	c.tickPending = false
}

// setPresented changes the underlying mode, leaving an open full view in
// place.
func (c *Controller) setPresented(mode Mode) {
	c.state.Base = mode
	if !c.state.Mode.IsFullView() {
		c.state.Mode = mode
	}
}

func (c *Controller) enterFullView() {
	c.state.MenuVisible = false
	c.state.SummaryOverlay = false
	c.state.DragOffset = Vec{}
	c.gesture.Reset()
}

func (c *Controller) fullView() View {
	if c.state.Mode == ModalOpen {
		return ViewModal
	}
	return ViewFull
}

func (c *Controller) render(view View) RenderPage {
	eff := RenderPage{DocID: c.doc.ID(), Page: 1, View: view, Scale: DefaultScale}
	switch view {
	case ViewFull:
		eff.Page = c.state.CurrentPage
		eff.Scale = c.state.Scale
		eff.Rotation = c.state.Rotation
	case ViewModal:
		eff.Page = c.state.ModalPage
		eff.Scale = c.state.Scale
		eff.Rotation = c.state.Rotation
	}
	return eff
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
