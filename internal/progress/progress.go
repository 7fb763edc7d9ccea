// Package progress maps elapsed time onto a decelerating completion curve
// used while a summary request is outstanding.
package progress

import (
	"math"
	"time"
)

const (
	// DefaultDuration is the expected request length.
	DefaultDuration = 30 * time.Second
	// FrameInterval is the animation cadence, roughly 30 frames per second.
	FrameInterval = time.Second / 30
)

// Estimator evaluates log10(1 + 9*min(t/D, 1)).
type Estimator struct {
	Duration time.Duration
}

// New returns an Estimator; non-positive durations use DefaultDuration.
func New(d time.Duration) Estimator {
	if d <= 0 {
		d = DefaultDuration
	}
	return Estimator{Duration: d}
}

// Fraction returns a value in [0, 1]. It is 0 at t=0, reaches 1 at t=D and
// stays there.
func (e Estimator) Fraction(elapsed time.Duration) float64 {
	d := e.Duration
	if d <= 0 {
		d = DefaultDuration
	}
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= d {
		return 1
	}
	ratio := float64(elapsed) / float64(d)
	return math.Min(math.Log10(1+9*ratio), 1)
}

// Run tracks one request's progress and never reports a smaller value than
// it already has.
type Run struct {
	est     Estimator
	started time.Time
	last    float64
}

// Start begins a run at now.
func (e Estimator) Start(now time.Time) *Run {
	return &Run{est: e, started: now}
}

// Advance evaluates the curve at now.
func (r *Run) Advance(now time.Time) float64 {
	v := r.est.Fraction(now.Sub(r.started))
	if v > r.last {
		r.last = v
	}
	return r.last
}

// Value returns the last reported fraction.
func (r *Run) Value() float64 { return r.last }

// Started returns the run's start time.
func (r *Run) Started() time.Time { return r.started }
