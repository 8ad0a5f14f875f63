// Package join binds the working set to visual marks.
//
// [Join] is the one explicit reconciliation step of the chart: it creates
// exactly one [Mark] per record, in working-set order, and schedules the
// staggered entrance animation. The binding never changes afterwards; no
// mark is added, removed or rebound.
//
// Attribute animation runs on a [Timeline]. Every (mark, attribute) slot
// carries an animation token so that a newer transition always supersedes
// an older one still in flight.
package join

import (
	"time"

	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/scales"
)

// Timing holds the animation durations of the chart.
type Timing struct {
	// Stagger delays the entrance of the mark at index i by i*Stagger.
	Stagger time.Duration
	// Entrance is the duration of each mark's grow-in.
	Entrance time.Duration
	// Hover is the duration of highlight, dim and reset transitions.
	Hover time.Duration
	// Ease is the entrance easing.
	Ease Easing
	// EaseName is the name Ease was parsed from, for renderers that
	// re-implement the curve.
	EaseName string
}

// DefaultTiming returns the standard chart timing.
func DefaultTiming() Timing {
	return Timing{
		Stagger:  15 * time.Millisecond,
		Entrance: 2000 * time.Millisecond,
		Hover:    200 * time.Millisecond,
		Ease:     DefaultEntranceEasing,
		EaseName: "elastic",
	}
}

// Scene is the joined chart: the immutable scale context plus one mark per
// record animated by a timeline.
type Scene struct {
	Scales   *scales.Set
	Timing   Timing
	Timeline *Timeline

	baselines []Attrs
}

// Join creates one mark per record of ws and schedules their entrance.
func Join(ws *catalog.WorkingSet, s *scales.Set, timing Timing) *Scene {
	if timing.Ease == nil {
		timing.Ease = DefaultEntranceEasing
	}

	n := ws.Len()
	marks := make([]Mark, n)
	baselines := make([]Attrs, n)
	for i := range n {
		r := ws.At(i)
		baselines[i] = Baseline(r, s)
		marks[i] = Mark{ID: MarkID(i), Record: r, Attrs: Initial(r, s)}
	}

	sc := &Scene{
		Scales:    s,
		Timing:    timing,
		Timeline:  NewTimeline(marks),
		baselines: baselines,
	}
	for i := range marks {
		sc.Timeline.Schedule(Target{
			Mark:     i,
			Fields:   FieldRadius,
			To:       baselines[i],
			Delay:    EntranceDelay(i, timing.Stagger),
			Duration: timing.Entrance,
			Ease:     timing.Ease,
		})
	}
	return sc
}

// EntranceDelay is the start offset of the mark at index i.
func EntranceDelay(i int, stagger time.Duration) time.Duration {
	return time.Duration(i) * stagger
}

// Len returns the number of marks.
func (sc *Scene) Len() int { return len(sc.Timeline.marks) }

// Mark returns the mark at index i.
func (sc *Scene) Mark(i int) Mark { return sc.Timeline.marks[i] }

// Marks returns the marks in working-set order. Callers must not modify
// the returned slice.
func (sc *Scene) Marks() []Mark { return sc.Timeline.marks }

// Baseline returns the resting attributes of mark i. The value is computed
// once at join time from the scales, so every reset restores exactly the
// same attributes.
func (sc *Scene) Baseline(i int) Attrs { return sc.baselines[i] }

// Find returns the index of the mark with the given id.
func (sc *Scene) Find(id string) (int, bool) {
	for i, m := range sc.Timeline.marks {
		if m.ID == id {
			return i, true
		}
	}
	return -1, false
}

// SetHighlighted flags mark i as under the pointer.
func (sc *Scene) SetHighlighted(i int, on bool) {
	sc.Timeline.marks[i].Highlighted = on
}

// Transition schedules t on the scene's timeline.
func (sc *Scene) Transition(t Target) []Token { return sc.Timeline.Schedule(t) }
