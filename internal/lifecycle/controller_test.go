package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/csheth/pdf2ai/internal/apperr"
	"github.com/csheth/pdf2ai/internal/document"
	"github.com/csheth/pdf2ai/internal/progress"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) time.Time {
	f.now = f.now.Add(d)
	return f.now
}

func newTestController(t *testing.T) (*Controller, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cfg := DefaultConfig()
	cfg.Clock = clock.Now
	cfg.Estimator = progress.New(30 * time.Second)
	return NewController(cfg), clock
}

func pdfFile(name string) document.File {
	return document.FromBytes(name, "application/pdf", []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"))
}

func mustInvariants(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.CheckInvariants(); err != nil {
		t.Fatalf("invariant broken: %v (state=%+v)", err, c.State())
	}
}

func findEffect[T Effect](effects []Effect) (T, bool) {
	for _, eff := range effects {
		if typed, ok := eff.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

func selectAndSummarize(t *testing.T, c *Controller) (uuid.UUID, uint64) {
	t.Helper()
	c.Select(pdfFile("report.pdf"))
	effects := c.Summarize()
	start, ok := findEffect[StartSummarize](effects)
	if !ok {
		t.Fatalf("summarize did not start a request: %#v", effects)
	}
	return start.DocID, start.Gen
}

func TestSelectValidFileEntersPreviewing(t *testing.T) {
	c, _ := newTestController(t)
	f := pdfFile("report.pdf")
	effects := c.Select(f)

	state := c.State()
	if state.Mode != Previewing {
		t.Fatalf("expected Previewing, got %s", state.Mode)
	}
	if state.DocumentID != f.ID() || state.FileName != "report.pdf" {
		t.Fatalf("document not recorded: %+v", state)
	}
	if state.PageCount != 0 {
		t.Fatalf("page count should start unknown, got %d", state.PageCount)
	}
	if _, ok := findEffect[LoadDocument](effects); !ok {
		t.Fatalf("expected LoadDocument effect, got %#v", effects)
	}
	render, ok := findEffect[RenderPage](effects)
	if !ok || render.Page != 1 || render.View != ViewIcon {
		t.Fatalf("expected page-1 icon render, got %#v", effects)
	}
	mustInvariants(t, c)
}

func TestSelectRejectedFileStoresReason(t *testing.T) {
	c, _ := newTestController(t)
	fake := document.FromBytes("fake.pdf", "image/png", []byte("\x89PNG\r\n\x1a\n"))
	effects := c.Select(fake)

	state := c.State()
	if state.Mode != ErrorState {
		t.Fatalf("expected ErrorState, got %s", state.Mode)
	}
	if state.Failure == nil || state.Failure.Kind != apperr.BadMimeType {
		t.Fatalf("expected BadMimeType, got %+v", state.Failure)
	}
	if state.HasDocument() {
		t.Fatal("rejected file must not become the active document")
	}
	if len(effects) != 0 {
		t.Fatalf("rejection should not request work, got %#v", effects)
	}
	if got := c.Summarize(); got != nil {
		t.Fatalf("summarize without document should be ignored, got %#v", got)
	}
	mustInvariants(t, c)
}

func TestSelectReplacesPreviousDocument(t *testing.T) {
	c, _ := newTestController(t)
	first := pdfFile("a.pdf")
	c.Select(first)
	c.Summarize()

	effects := c.Select(pdfFile("b.pdf"))
	cancel, ok := findEffect[CancelSummarize](effects)
	if !ok || cancel.DocID != first.ID() {
		t.Fatalf("expected cancel for first document, got %#v", effects)
	}
	release, ok := findEffect[ReleaseDocument](effects)
	if !ok || release.DocID != first.ID() {
		t.Fatalf("expected release for first document, got %#v", effects)
	}
	if c.State().FileName != "b.pdf" || c.State().Mode != Previewing {
		t.Fatalf("replacement not active: %+v", c.State())
	}
	mustInvariants(t, c)
}

func TestSummarizeSuccessFlow(t *testing.T) {
	c, clock := newTestController(t)
	docID, gen := selectAndSummarize(t, c)

	state := c.State()
	if state.Mode != Scanning || !state.ScanLineVisible || state.Progress != 0 {
		t.Fatalf("unexpected scanning state: %+v", state)
	}
	mustInvariants(t, c)

	effects := c.Tick(docID, gen, clock.Advance(3*time.Second))
	if _, ok := findEffect[ScheduleTick](effects); !ok {
		t.Fatalf("tick should reschedule while scanning, got %#v", effects)
	}
	mid := c.State().Progress
	if mid <= 0 || mid >= 1 {
		t.Fatalf("expected partial progress, got %f", mid)
	}

	effects = c.SummarizeSucceeded(docID, gen, "A concise summary.")
	state = c.State()
	if state.Mode != SummaryReady || !state.HasSummary || state.Summary != "A concise summary." {
		t.Fatalf("unexpected ready state: %+v", state)
	}
	if state.Progress != 1 {
		t.Fatalf("progress should snap to 1, got %f", state.Progress)
	}
	hide, ok := findEffect[ScheduleTimer](effects)
	if !ok || hide.Timer != TimerScanHide || hide.After != DefaultScanHideDelay {
		t.Fatalf("expected scan-hide timer, got %#v", effects)
	}
	if len(effects) != 2 {
		t.Fatalf("expected scan-hide and auto-open timers, got %#v", effects)
	}
	mustInvariants(t, c)

	if got := c.Tick(docID, gen, clock.Advance(time.Second)); got != nil {
		t.Fatalf("ticks must stop after completion, got %#v", got)
	}

	c.TimerFired(TimerScanHide, docID, gen)
	if c.State().ScanLineVisible {
		t.Fatal("scan line should hide after the delay")
	}
	c.TimerFired(TimerAutoOpen, docID, gen)
	if !c.State().SummaryOverlay {
		t.Fatal("summary overlay should auto-open")
	}
	mustInvariants(t, c)
}

func TestSummarizeFailureKeepsDocument(t *testing.T) {
	c, _ := newTestController(t)
	docID, gen := selectAndSummarize(t, c)

	c.SummarizeFailed(docID, gen, apperr.New(apperr.ServerError, errors.New("HTTP 500")))
	state := c.State()
	if state.Mode != ErrorState {
		t.Fatalf("expected ErrorState, got %s", state.Mode)
	}
	if state.HasSummary {
		t.Fatal("summary must remain unset after failure")
	}
	if state.Failure.Kind != apperr.ServerError || state.Failure.Detail() != "HTTP 500" {
		t.Fatalf("unexpected failure: %+v", state.Failure)
	}
	if !state.HasDocument() {
		t.Fatal("document should survive a summarize failure")
	}
	mustInvariants(t, c)

	if _, ok := findEffect[StartSummarize](c.Summarize()); !ok {
		t.Fatal("retry from ErrorState should start a new request")
	}
	if c.State().Failure != nil {
		t.Fatal("retry should clear the previous failure")
	}
	mustInvariants(t, c)
}

func TestSummarizeFailureWithPlainErrorIsServerError(t *testing.T) {
	c, _ := newTestController(t)
	docID, gen := selectAndSummarize(t, c)
	c.SummarizeFailed(docID, gen, errors.New("boom"))
	if c.State().Failure.Kind != apperr.ServerError {
		t.Fatalf("expected ServerError fallback, got %s", c.State().Failure.Kind)
	}
}

func TestSecondSummarizeWhileScanningIgnored(t *testing.T) {
	c, _ := newTestController(t)
	_, gen := selectAndSummarize(t, c)
	if got := c.Summarize(); got != nil {
		t.Fatalf("second summarize should be a no-op, got %#v", got)
	}
	if c.Generation() != gen {
		t.Fatalf("generation changed from %d to %d", gen, c.Generation())
	}
}

func TestDeleteWhileScanningDiscardsLateResponse(t *testing.T) {
	c, clock := newTestController(t)
	docID, gen := selectAndSummarize(t, c)

	effects := c.Delete()
	if _, ok := findEffect[CancelSummarize](effects); !ok {
		t.Fatalf("delete should cancel the request, got %#v", effects)
	}
	if _, ok := findEffect[ReleaseDocument](effects); !ok {
		t.Fatalf("delete should release the document, got %#v", effects)
	}
	before := c.State()

	c.SummarizeSucceeded(docID, gen, "late")
	c.SummarizeFailed(docID, gen, errors.New("late"))
	c.Tick(docID, gen, clock.Advance(time.Second))
	c.TimerFired(TimerAutoOpen, docID, gen)
	c.PageCountKnown(docID, 4)

	if c.State() != before {
		t.Fatalf("late events changed state: %+v", c.State())
	}
	if c.State().Mode != NoDocument {
		t.Fatalf("expected NoDocument, got %s", c.State().Mode)
	}
	mustInvariants(t, c)
}

func TestStaleGenerationDiscarded(t *testing.T) {
	c, _ := newTestController(t)
	docID, first := selectAndSummarize(t, c)
	c.SummarizeFailed(docID, first, errors.New("timeout"))
	start, _ := findEffect[StartSummarize](c.Summarize())

	c.SummarizeSucceeded(docID, first, "stale")
	if c.State().Mode != Scanning {
		t.Fatalf("stale success should be ignored, mode=%s", c.State().Mode)
	}
	c.SummarizeSucceeded(docID, start.Gen, "fresh")
	if c.State().Summary != "fresh" {
		t.Fatalf("expected fresh summary, got %q", c.State().Summary)
	}
}

func TestExpandAndModalAreExclusive(t *testing.T) {
	c, _ := newTestController(t)
	c.Select(pdfFile("report.pdf"))

	c.Expand()
	if c.State().Mode != Expanded || c.State().Base != Previewing {
		t.Fatalf("expected Expanded over Previewing, got %+v", c.State())
	}
	c.ShowModal()
	if c.State().Mode != ModalOpen || c.State().Base != Previewing {
		t.Fatalf("modal should replace expanded view, got %s over %s", c.State().Mode, c.State().Base)
	}
	mustInvariants(t, c)

	effects := c.Expand()
	if c.State().Mode != Expanded || c.State().Base != Previewing {
		t.Fatalf("expand should close the modal first, got %s over %s", c.State().Mode, c.State().Base)
	}
	render, ok := findEffect[RenderPage](effects[len(effects)-1:])
	if !ok || render.View != ViewFull {
		t.Fatalf("expected a full render last, got %#v", effects)
	}
	mustInvariants(t, c)
}

func TestExpandIgnoredWhileScanning(t *testing.T) {
	c, _ := newTestController(t)
	selectAndSummarize(t, c)
	if got := c.Expand(); got != nil {
		t.Fatalf("expand while scanning should be ignored, got %#v", got)
	}
	c.ShowModal()
	if got := c.Expand(); got != nil || c.State().Mode != ModalOpen {
		t.Fatalf("expand over a scanning modal should be ignored, mode=%s", c.State().Mode)
	}
}

func TestCollapseResetsPage(t *testing.T) {
	c, _ := newTestController(t)
	c.Select(pdfFile("report.pdf"))
	id := c.State().DocumentID
	c.PageCountKnown(id, 5)
	c.Expand()
	c.NextPage()
	c.NextPage()
	if c.State().CurrentPage != 3 {
		t.Fatalf("expected page 3, got %d", c.State().CurrentPage)
	}
	c.Escape()
	if c.State().Mode != Previewing || c.State().CurrentPage != 1 {
		t.Fatalf("escape should collapse and reset the page, got %+v", c.State())
	}
	c.Expand()
	if c.State().CurrentPage != 1 {
		t.Fatalf("re-expanding should start at page 1, got %d", c.State().CurrentPage)
	}
}

func TestNavigationClampsToPageCount(t *testing.T) {
	c, _ := newTestController(t)
	c.Select(pdfFile("report.pdf"))
	id := c.State().DocumentID
	c.Expand()

	if got := c.NextPage(); got != nil {
		t.Fatalf("navigation should be disabled before the page count arrives, got %#v", got)
	}
	c.PageCountKnown(id, 3)

	if got := c.PrevPage(); got != nil {
		t.Fatalf("prev on first page should be a no-op, got %#v", got)
	}
	for i := 0; i < 5; i++ {
		c.NextPage()
	}
	if c.State().CurrentPage != 3 {
		t.Fatalf("expected last page 3, got %d", c.State().CurrentPage)
	}
	if got := c.NextPage(); got != nil {
		t.Fatalf("next on last page should be a no-op, got %#v", got)
	}
	mustInvariants(t, c)
}

func TestModalPageIsIndependent(t *testing.T) {
	c, _ := newTestController(t)
	c.Select(pdfFile("report.pdf"))
	c.PageCountKnown(c.State().DocumentID, 4)
	c.ShowModal()
	effects := c.NextPage()
	render, ok := findEffect[RenderPage](effects)
	if !ok || render.View != ViewModal || render.Page != 2 {
		t.Fatalf("expected modal render of page 2, got %#v", effects)
	}
	if c.State().CurrentPage != 1 {
		t.Fatalf("modal navigation must not move the expanded cursor, got %d", c.State().CurrentPage)
	}
	c.CloseModal()
	if c.State().ModalPage != 1 {
		t.Fatalf("closing the modal should reset its page, got %d", c.State().ModalPage)
	}
}

func TestModalSuspendsAndResumesProgress(t *testing.T) {
	c, clock := newTestController(t)
	docID, gen := selectAndSummarize(t, c)
	c.Tick(docID, gen, clock.Advance(2*time.Second))
	before := c.State().Progress

	c.ShowModal()
	if c.State().Mode != ModalOpen || c.State().Base != Scanning {
		t.Fatalf("modal should open over scanning, got %s over %s", c.State().Mode, c.State().Base)
	}
	if got := c.Tick(docID, gen, clock.Advance(5*time.Second)); got != nil {
		t.Fatalf("ticks should be suspended under the modal, got %#v", got)
	}
	if c.State().Progress != before {
		t.Fatalf("progress moved while suspended: %f -> %f", before, c.State().Progress)
	}
	mustInvariants(t, c)

	effects := c.CloseModal()
	if _, ok := findEffect[ScheduleTick](effects); !ok {
		t.Fatalf("closing the modal should resume ticking, got %#v", effects)
	}
	c.Tick(docID, gen, clock.Advance(time.Second))
	want := progress.New(30 * time.Second).Fraction(8 * time.Second)
	if got := c.State().Progress; got != want {
		t.Fatalf("progress should resume from the original start: got %f want %f", got, want)
	}
}

func TestCloseModalDoesNotDuplicatePendingTick(t *testing.T) {
	c, _ := newTestController(t)
	selectAndSummarize(t, c)
	c.ShowModal()
	effects := c.CloseModal()
	if _, ok := findEffect[ScheduleTick](effects); ok {
		t.Fatalf("a tick is already pending; closing should not schedule another: %#v", effects)
	}
}

func TestCompletionUnderModalUpdatesBase(t *testing.T) {
	c, _ := newTestController(t)
	docID, gen := selectAndSummarize(t, c)
	c.ShowModal()
	c.SummarizeSucceeded(docID, gen, "done")

	state := c.State()
	if state.Mode != ModalOpen || state.Base != SummaryReady {
		t.Fatalf("modal should stay open over SummaryReady, got %s over %s", state.Mode, state.Base)
	}
	mustInvariants(t, c)
	c.TimerFired(TimerAutoOpen, docID, gen)
	if c.State().SummaryOverlay {
		t.Fatal("auto-open should not show the overlay under a full view")
	}
	c.CloseModal()
	if c.State().Mode != SummaryReady {
		t.Fatalf("expected SummaryReady after closing, got %s", c.State().Mode)
	}
}

func TestDragSuppressesClick(t *testing.T) {
	c, _ := newTestController(t)
	c.Select(pdfFile("report.pdf"))

	c.PointerDown(Vec{X: 10, Y: 10})
	c.PointerMove(Vec{X: 14, Y: 14})
	if c.GesturePhase() != GestureDragging {
		t.Fatalf("expected dragging after crossing the threshold, got %s", c.GesturePhase())
	}
	if got := c.State().DragOffset; got != (Vec{X: 4, Y: 4}) {
		t.Fatalf("unexpected drag offset %+v", got)
	}
	if got := c.PointerUp(Vec{X: 16, Y: 13}); got != nil {
		t.Fatalf("a drag must not expand, got %#v", got)
	}
	state := c.State()
	if state.Mode != Previewing {
		t.Fatalf("mode changed after drag: %s", state.Mode)
	}
	if state.Position != (Vec{X: 6, Y: 3}) || !state.DragOffset.IsZero() {
		t.Fatalf("drag should commit position and clear offset, got %+v / %+v", state.Position, state.DragOffset)
	}
	if c.GesturePhase() != GestureSettled {
		t.Fatalf("expected Settled, got %s", c.GesturePhase())
	}
}

func TestShortDragIsClick(t *testing.T) {
	c, _ := newTestController(t)
	c.Select(pdfFile("report.pdf"))

	c.PointerDown(Vec{X: 10, Y: 10})
	c.PointerMove(Vec{X: 12, Y: 11})
	effects := c.PointerUp(Vec{X: 13, Y: 11})
	if c.State().Mode != Expanded {
		t.Fatalf("a short press should expand, got %s", c.State().Mode)
	}
	if _, ok := findEffect[RenderPage](effects); !ok {
		t.Fatalf("expected a full render, got %#v", effects)
	}
	if !c.State().Position.IsZero() {
		t.Fatalf("a click must not move the icon, got %+v", c.State().Position)
	}
}

func TestPointerIgnoredInFullView(t *testing.T) {
	c, _ := newTestController(t)
	c.Select(pdfFile("report.pdf"))
	c.Expand()
	c.PointerDown(Vec{X: 1, Y: 1})
	if c.GestureActive() {
		t.Fatal("gestures should not start over a full view")
	}
}

func TestHoverMenu(t *testing.T) {
	c, _ := newTestController(t)
	c.HoverEnter()
	if c.State().MenuVisible {
		t.Fatal("menu needs a document")
	}
	c.Select(pdfFile("report.pdf"))
	c.HoverEnter()
	if !c.State().MenuVisible {
		t.Fatal("hover should show the menu")
	}
	effects := c.MenuSelect(MenuShow)
	if c.State().Mode != ModalOpen || c.State().MenuVisible {
		t.Fatalf("show should open the modal and hide the menu, got %+v", c.State())
	}
	if _, ok := findEffect[RenderPage](effects); !ok {
		t.Fatalf("expected modal render, got %#v", effects)
	}
	c.HoverEnter()
	if c.State().MenuVisible {
		t.Fatal("menu must stay hidden over a full view")
	}
	mustInvariants(t, c)
}

func TestMenuDelete(t *testing.T) {
	c, _ := newTestController(t)
	c.Select(pdfFile("report.pdf"))
	c.HoverEnter()
	c.MenuSelect(MenuDelete)
	if c.State().Mode != NoDocument {
		t.Fatalf("expected NoDocument, got %s", c.State().Mode)
	}
	if got := c.MenuSelect(MenuSummarize); got != nil {
		t.Fatalf("hidden menu should ignore selections, got %#v", got)
	}
}

func TestEscapeClosesInnermostSurface(t *testing.T) {
	c, _ := newTestController(t)
	docID, gen := selectAndSummarize(t, c)
	c.SummarizeSucceeded(docID, gen, "ok")
	c.ToggleSummaryOverlay()
	if !c.State().SummaryOverlay {
		t.Fatal("overlay should open")
	}
	c.Escape()
	if c.State().SummaryOverlay {
		t.Fatal("escape should close the overlay")
	}
	c.Expand()
	c.Escape()
	if c.State().Mode != SummaryReady {
		t.Fatalf("escape should collapse back to SummaryReady, got %s", c.State().Mode)
	}
}

func TestZoomAndRotateBounds(t *testing.T) {
	c, _ := newTestController(t)
	c.Select(pdfFile("report.pdf"))
	if got := c.ZoomIn(); got != nil {
		t.Fatalf("zoom outside a full view should be ignored, got %#v", got)
	}
	c.Expand()
	for i := 0; i < 20; i++ {
		c.ZoomIn()
	}
	if c.State().Scale != MaxScale {
		t.Fatalf("expected max scale, got %f", c.State().Scale)
	}
	for i := 0; i < 20; i++ {
		c.ZoomOut()
	}
	if c.State().Scale != MinScale {
		t.Fatalf("expected min scale, got %f", c.State().Scale)
	}
	for i := 0; i < 5; i++ {
		c.Rotate()
	}
	effects := c.Rotate()
	render, _ := findEffect[RenderPage](effects)
	if c.State().Rotation != 180 || render.Rotation != 180 {
		t.Fatalf("expected 180 degrees, got %d / %d", c.State().Rotation, render.Rotation)
	}
}

func TestRenderAndLoadFailures(t *testing.T) {
	c, _ := newTestController(t)
	c.Select(pdfFile("report.pdf"))
	id := c.State().DocumentID

	c.RenderFailed(id, 2, errors.New("bad content stream"))
	state := c.State()
	if state.PageError == nil || state.PageErrorPage != 2 || state.PageError.Kind != apperr.RenderingServiceUnavailable {
		t.Fatalf("unexpected page error: %+v", state.PageError)
	}
	if state.Mode != Previewing {
		t.Fatalf("render failures must not change the mode, got %s", state.Mode)
	}
	c.PageRendered(id, 1)
	if c.State().PageError == nil {
		t.Fatal("rendering a different page should keep the error")
	}
	c.PageRendered(id, 2)
	if c.State().PageError != nil {
		t.Fatal("rendering the failed page should clear the error")
	}

	c.LoadFailed(id, apperr.New(apperr.PasswordProtectedPdf, nil))
	state = c.State()
	if state.LoadFailure == nil || state.LoadFailure.Kind != apperr.PasswordProtectedPdf {
		t.Fatalf("unexpected load failure: %+v", state.LoadFailure)
	}
	if !state.HasDocument() || state.Mode != Previewing {
		t.Fatalf("load failure should keep the document, got %+v", state)
	}
	c.ToggleDetails()
	if !c.State().ShowDetails {
		t.Fatal("details should toggle when a failure exists")
	}
}

func TestZeroPageCountIsUnsupported(t *testing.T) {
	c, _ := newTestController(t)
	c.Select(pdfFile("report.pdf"))
	c.PageCountKnown(c.State().DocumentID, 0)
	if c.State().LoadFailure == nil || c.State().LoadFailure.Kind != apperr.UnsupportedPdfFormat {
		t.Fatalf("expected UnsupportedPdfFormat, got %+v", c.State().LoadFailure)
	}
}

func TestRefreshRendersVisibleViews(t *testing.T) {
	c, _ := newTestController(t)
	if got := c.Refresh(); got != nil {
		t.Fatalf("nothing to refresh without a document, got %#v", got)
	}
	c.Select(pdfFile("report.pdf"))
	c.ShowModal()
	effects := c.Refresh()
	if len(effects) != 2 {
		t.Fatalf("expected icon and modal renders, got %#v", effects)
	}
}
