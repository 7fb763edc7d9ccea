package lifecycle

// GesturePhase is the recognizer's state.
type GesturePhase int

const (
	GestureIdle GesturePhase = iota
	GesturePossibleDrag
	GestureDragging
	GestureSettled
)

func (p GesturePhase) String() string {
	switch p {
	case GesturePossibleDrag:
		return "PossibleDrag"
	case GestureDragging:
		return "Dragging"
	case GestureSettled:
		return "Settled"
	default:
		return "Idle"
	}
}

// GestureOutcome is what a pointer release resolved to.
type GestureOutcome int

const (
	OutcomeNone GestureOutcome = iota
	OutcomeClick
	OutcomeDrag
)

// DefaultDragThreshold is the distance a pointer must travel before a press
// becomes a drag.
const DefaultDragThreshold = 5.0

// Gesture tells a click from a drag.
type Gesture struct {
	threshold float64
	phase     GesturePhase
	start     Vec
	offset    Vec
}

// NewGesture returns an idle recognizer. Non-positive thresholds use
// DefaultDragThreshold.
func NewGesture(threshold float64) *Gesture {
	if threshold <= 0 {
		threshold = DefaultDragThreshold
	}
	return &Gesture{threshold: threshold}
}

func (g *Gesture) Phase() GesturePhase { return g.phase }

// Active reports whether a press is in progress.
func (g *Gesture) Active() bool {
	return g.phase == GesturePossibleDrag || g.phase == GestureDragging
}

// Down starts a new press at p.
func (g *Gesture) Down(p Vec) {
	g.phase = GesturePossibleDrag
	g.start = p
	g.offset = Vec{}
}

// Move updates the offset from the press point. It returns false when no
// press is in progress.
func (g *Gesture) Move(p Vec) (Vec, bool) {
	if !g.Active() {
		return Vec{}, false
	}
	g.offset = p.Sub(g.start)
	if g.phase == GesturePossibleDrag && g.offset.Len() > g.threshold {
		g.phase = GestureDragging
	}
	return g.offset, true
}

// Up ends the press. A drag yields its final offset; anything shorter is a
// click.
func (g *Gesture) Up(p Vec) (GestureOutcome, Vec) {
	if !g.Active() {
		return OutcomeNone, Vec{}
	}
	g.Move(p)
	if g.phase == GestureDragging {
		g.phase = GestureSettled
		return OutcomeDrag, g.offset
	}
	g.phase = GestureIdle
	g.offset = Vec{}
	return OutcomeClick, Vec{}
}

// Reset drops any press in progress.
func (g *Gesture) Reset() {
	g.phase = GestureIdle
	g.start = Vec{}
	g.offset = Vec{}
}
