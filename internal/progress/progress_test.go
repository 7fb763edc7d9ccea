package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFractionCurve(t *testing.T) {
	e := New(30 * time.Second)
	assert.Equal(t, 0.0, e.Fraction(0))
	assert.InDelta(t, 0.740, e.Fraction(15*time.Second), 0.001)
	assert.InDelta(t, 0.447, e.Fraction(6*time.Second), 0.001)
	assert.Equal(t, 1.0, e.Fraction(30*time.Second))
	assert.Equal(t, 1.0, e.Fraction(45*time.Second))
}

func TestFractionMonotone(t *testing.T) {
	e := New(0)
	prev := -1.0
	for ms := 0; ms <= 40_000; ms += 250 {
		v := e.Fraction(time.Duration(ms) * time.Millisecond)
		assert.GreaterOrEqual(t, v, prev)
		assert.LessOrEqual(t, v, 1.0)
		prev = v
	}
}

func TestNegativeElapsedIsZero(t *testing.T) {
	assert.Equal(t, 0.0, New(time.Second).Fraction(-time.Second))
}

func TestRunNeverRegresses(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	run := New(10 * time.Second).Start(start)
	high := run.Advance(start.Add(5 * time.Second))
	assert.Greater(t, high, 0.0)
	assert.Equal(t, high, run.Advance(start.Add(2*time.Second)))
	assert.Equal(t, high, run.Value())
	assert.Equal(t, start, run.Started())
}
