package join

import (
	"math"
	"time"

	"github.com/matzehuels/trackviz/pkg/scales"
)

// Token identifies one scheduled tween of one mark attribute. A tween whose
// token is no longer current for its slot has been superseded.
type Token uint64

// Target describes a transition: which fields of which mark move to which
// values, when, and how.
type Target struct {
	Mark     int
	Fields   Field
	To       Attrs
	Delay    time.Duration
	Duration time.Duration
	Ease     Easing
}

type slot struct {
	mark  int
	field Field
}

type tween struct {
	token    Token
	start    time.Duration
	duration time.Duration
	ease     Easing
	to       Attrs

	begun bool
	from  Attrs
}

// Timeline animates mark attributes on a virtual clock.
//
// Each (mark, attribute) slot holds at most one live tween. Scheduling a new
// tween on a slot supersedes the old one: the newer target always wins and
// the older tween's completion is a no-op. Timeline is not safe for
// concurrent use; like the event loop it models, it runs on one goroutine.
type Timeline struct {
	marks   []Mark
	now     time.Duration
	next    Token
	current map[slot]Token
	active  map[slot]*tween
}

// NewTimeline returns a timeline over marks. The slice is owned by the
// timeline from then on.
func NewTimeline(marks []Mark) *Timeline {
	return &Timeline{
		marks:   marks,
		current: make(map[slot]Token),
		active:  make(map[slot]*tween),
	}
}

// Now returns the virtual clock.
func (tl *Timeline) Now() time.Duration { return tl.now }

// Schedule starts a transition and returns one token per animated field,
// in Field order. A zero duration applies the target on the next Advance.
func (tl *Timeline) Schedule(t Target) []Token {
	ease := t.Ease
	if ease == nil {
		ease = CubicInOut
	}
	fields := t.Fields.fields()
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		tl.next++
		k := slot{mark: t.Mark, field: f}
		tl.current[k] = tl.next
		tl.active[k] = &tween{
			token:    tl.next,
			start:    tl.now + t.Delay,
			duration: t.Duration,
			ease:     ease,
			to:       t.To,
		}
		tokens = append(tokens, tl.next)
	}
	return tokens
}

// Current reports whether tok is still the live token for its slot.
func (tl *Timeline) Current(mark int, f Field, tok Token) bool {
	return tl.current[slot{mark, f}] == tok
}

// Complete finishes the tween identified by tok, snapping the attribute to
// its target. It returns false, changing nothing, when tok was superseded.
func (tl *Timeline) Complete(mark int, f Field, tok Token) bool {
	k := slot{mark, f}
	if tl.current[k] != tok {
		return false
	}
	tw, ok := tl.active[k]
	if !ok {
		return false
	}
	setField(&tl.marks[mark].Attrs, f, tw.to)
	delete(tl.active, k)
	return true
}

// Advance moves the clock forward by dt and updates every live tween.
func (tl *Timeline) Advance(dt time.Duration) {
	tl.now += dt
	for k, tw := range tl.active {
		if tl.now < tw.start {
			continue
		}
		a := &tl.marks[k.mark].Attrs
		if !tw.begun {
			tw.begun = true
			tw.from = *a
		}
		p := 1.0
		if tw.duration > 0 {
			p = math.Min(1, float64(tl.now-tw.start)/float64(tw.duration))
		}
		if p >= 1 {
			tl.Complete(k.mark, k.field, tw.token)
			continue
		}
		interpolate(a, k.field, tw.from, tw.to, tw.ease(p))
	}
}

// Settle runs every pending tween to completion.
func (tl *Timeline) Settle() {
	var end time.Duration
	for _, tw := range tl.active {
		end = max(end, tw.start+tw.duration)
	}
	tl.Advance(max(0, end-tl.now))
}

// Pending returns the number of live tweens.
func (tl *Timeline) Pending() int { return len(tl.active) }

// Marks returns the marks in working-set order.
func (tl *Timeline) Marks() []Mark { return tl.marks }

func setField(a *Attrs, f Field, to Attrs) {
	switch f {
	case FieldRadius:
		a.Radius = to.Radius
	case FieldStroke:
		a.Stroke = to.Stroke
	case FieldStrokeWidth:
		a.StrokeWidth = to.StrokeWidth
	case FieldOpacity:
		a.Opacity = to.Opacity
	}
}

func interpolate(a *Attrs, f Field, from, to Attrs, e float64) {
	lerp := func(x, y float64) float64 { return x + (y-x)*e }
	switch f {
	case FieldRadius:
		a.Radius = math.Max(0, lerp(from.Radius, to.Radius))
	case FieldStroke:
		a.Stroke = scales.Blend(from.Stroke, to.Stroke, e)
	case FieldStrokeWidth:
		a.StrokeWidth = lerp(from.StrokeWidth, to.StrokeWidth)
	case FieldOpacity:
		a.Opacity = math.Max(0, math.Min(1, lerp(from.Opacity, to.Opacity)))
	}
}
