package lifecycle

import (
	"time"

	"github.com/google/uuid"
)

// Effect is a side effect requested by the controller. The host executes
// effects and reports results back as events.
type Effect interface {
	effect()
}

// View selects the surface a page is rendered for.
type View int

const (
	ViewIcon View = iota
	ViewFull
	ViewModal
)

func (v View) String() string {
	switch v {
	case ViewFull:
		return "full"
	case ViewModal:
		return "modal"
	default:
		return "icon"
	}
}

// Timer names a fixed-delay transition.
type Timer int

const (
	TimerScanHide Timer = iota
	TimerAutoOpen
)

func (t Timer) String() string {
	if t == TimerAutoOpen {
		return "auto-open"
	}
	return "scan-hide"
}

// LoadDocument asks the host to open the document with the previewer and
// report its page count.
type LoadDocument struct {
	DocID uuid.UUID
}

// RenderPage asks for one page on one surface.
type RenderPage struct {
	DocID    uuid.UUID
	Page     int
	View     View
	Scale    float64
	Rotation int
}

// StartSummarize begins the request for generation Gen.
type StartSummarize struct {
	DocID uuid.UUID
	Gen   uint64
}

// CancelSummarize aborts the request for generation Gen.
type CancelSummarize struct {
	DocID uuid.UUID
	Gen   uint64
}

// ScheduleTick requests an animation frame after the given delay.
type ScheduleTick struct {
	DocID uuid.UUID
	Gen   uint64
	After time.Duration
}

// ScheduleTimer requests a one-shot timer.
type ScheduleTimer struct {
	Timer Timer
	DocID uuid.UUID
	Gen   uint64
	After time.Duration
}

// ReleaseDocument frees the previewer resources held for the document.
type ReleaseDocument struct {
	DocID uuid.UUID
}

func (LoadDocument) effect()    {}
func (RenderPage) effect()      {}
func (StartSummarize) effect()  {}
func (CancelSummarize) effect() {}
func (ScheduleTick) effect()    {}
func (ScheduleTimer) effect()   {}
func (ReleaseDocument) effect() {}
