package lifecycle

import (
	"math"

	"github.com/google/uuid"

	"github.com/csheth/pdf2ai/internal/apperr"
)

// Mode is the presentation state of the active document.
type Mode int

const (
	NoDocument Mode = iota
	Previewing
	Scanning
	SummaryReady
	ErrorState
	Expanded
	ModalOpen
)

func (m Mode) String() string {
	switch m {
	case NoDocument:
		return "NoDocument"
	case Previewing:
		return "Previewing"
	case Scanning:
		return "Scanning"
	case SummaryReady:
		return "SummaryReady"
	case ErrorState:
		return "ErrorState"
	case Expanded:
		return "Expanded"
	case ModalOpen:
		return "ModalOpen"
	default:
		return "Unknown"
	}
}

// IsFullView reports whether the mode covers the icon with a page view.
func (m Mode) IsFullView() bool {
	return m == Expanded || m == ModalOpen
}

// Vec is a 2D offset in terminal cells.
type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec) Len() float64  { return math.Hypot(v.X, v.Y) }
func (v Vec) IsZero() bool  { return v.X == 0 && v.Y == 0 }

const (
	MinScale     = 0.5
	MaxScale     = 3.0
	ScaleStep    = 0.2
	DefaultScale = 1.0
)

// State is a snapshot of everything the host needs to draw.
type State struct {
	Mode Mode
	// Base is the mode underneath Expanded or ModalOpen. Outside full views
	// it equals Mode.
	Base Mode

	Progress   float64
	Summary    string
	HasSummary bool

	CurrentPage int
	// PageCount is 0 until the previewer reports it.
	PageCount int
	ModalPage int

	DragOffset Vec
	Position   Vec

	Failure       *apperr.Error
	LoadFailure   *apperr.Error
	PageError     *apperr.Error
	PageErrorPage int
	ShowDetails   bool

	ScanLineVisible bool
	SummaryOverlay  bool
	MenuVisible     bool

	Scale    float64
	Rotation int

	DocumentID uuid.UUID
	FileName   string
	FileSize   int64
}

// HasDocument reports whether a validated document is active.
func (s State) HasDocument() bool {
	return s.DocumentID != uuid.Nil
}

// Presented is the non-full-view mode: Base while a full view is open,
// Mode otherwise.
func (s State) Presented() Mode {
	if s.Mode.IsFullView() {
		return s.Base
	}
	return s.Mode
}

// CanNavigate reports whether page controls are enabled.
func (s State) CanNavigate() bool {
	return s.Mode.IsFullView() && s.PageCount > 0
}

// ViewPage is the page shown by the open full view, or 1.
func (s State) ViewPage() int {
	switch s.Mode {
	case Expanded:
		return s.CurrentPage
	case ModalOpen:
		return s.ModalPage
	default:
		return 1
	}
}

// Diagnostic returns the failure whose details the host shows.
func (s State) Diagnostic() *apperr.Error {
	switch {
	case s.Failure != nil:
		return s.Failure
	case s.LoadFailure != nil:
		return s.LoadFailure
	default:
		return s.PageError
	}
}

func emptyState() State {
	return State{
		Mode:        NoDocument,
		Base:        NoDocument,
		CurrentPage: 1,
		ModalPage:   1,
		Scale:       DefaultScale,
	}
}
