// Package interact implements the pointer state machine of the chart.
//
// Each mark is Idle, Hovered or Dimmed; the chart as a whole has at most one
// Selected mark whose tooltip is showing.
//
//	enter(m)        m: Idle -> Hovered, every other mark -> Dimmed
//	leave(m)        every mark -> Idle (global reset)
//	click(m)        Selected = m, tooltip shown near the pointer
//	click(elsewhere) Selected = none, tooltip hidden
//
// The attribute changes are computed by [Respond], a pure function of the
// mark, its baseline and the event. [Controller] applies them to a
// join.Scene as transitions; the embedded page script in pkg/sink does the
// same in the browser.
package interact

import (
	"fmt"
	"time"

	"github.com/matzehuels/trackviz/pkg/join"
	"github.com/matzehuels/trackviz/pkg/scales"
)

// Highlight styling.
const (
	HoverRadiusFactor = 1.5
	HoverStrokeWidth  = 3.0
	HoverOpacity      = 1.0
	DimmedOpacity     = 0.15
)

// State is the interaction state of one mark.
type State int

const (
	Idle State = iota
	Hovered
	Dimmed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Hovered:
		return "hovered"
	case Dimmed:
		return "dimmed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EventKind distinguishes pointer events.
type EventKind int

const (
	PointerEnter EventKind = iota
	PointerLeave
	Click
)

func (k EventKind) String() string {
	switch k {
	case PointerEnter:
		return "enter"
	case PointerLeave:
		return "leave"
	case Click:
		return "click"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// NoMark is the Mark of an event that did not hit a mark.
const NoMark = -1

// Event is a pointer event. X and Y are page coordinates of the pointer.
type Event struct {
	Kind EventKind
	Mark int
	X, Y float64
}

// Enter returns a pointer-enter event on mark i.
func Enter(i int) Event { return Event{Kind: PointerEnter, Mark: i} }

// Leave returns a pointer-leave event from mark i.
func Leave(i int) Event { return Event{Kind: PointerLeave, Mark: i} }

// ClickMark returns a click on mark i at page position (x, y).
func ClickMark(i int, x, y float64) Event { return Event{Kind: Click, Mark: i, X: x, Y: y} }

// ClickBackground returns a click that hit no mark.
func ClickBackground() Event { return Event{Kind: Click, Mark: NoMark} }

// Respond returns the attributes mark i transitions to when ev happens,
// and which fields change. ok is false when ev leaves the mark untouched.
func Respond(i int, baseline join.Attrs, ev Event) (to join.Attrs, fields join.Field, ok bool) {
	switch ev.Kind {
	case PointerEnter:
		if ev.Mark == NoMark {
			return baseline, 0, false
		}
		to = baseline
		if i == ev.Mark {
			to.Radius = baseline.Radius * HoverRadiusFactor
			to.Stroke = scales.BrandGreen
			to.StrokeWidth = HoverStrokeWidth
			to.Opacity = HoverOpacity
			return to, join.AllFields, true
		}
		to.Opacity = DimmedOpacity
		return to, join.FieldOpacity, true
	case PointerLeave:
		return baseline, join.AllFields, true
	default:
		return baseline, 0, false
	}
}

// Next returns the state of mark i after ev, given its current state.
func Next(i int, cur State, ev Event) State {
	switch ev.Kind {
	case PointerEnter:
		if ev.Mark == NoMark {
			return cur
		}
		if i == ev.Mark {
			return Hovered
		}
		return Dimmed
	case PointerLeave:
		return Idle
	default:
		return cur
	}
}

// Controller drives a scene through the interaction state machine.
type Controller struct {
	scene    *join.Scene
	states   []State
	selected int
	tooltip  Tooltip
}

// NewController returns a controller with every mark Idle and nothing
// selected.
func NewController(scene *join.Scene) *Controller {
	return &Controller{
		scene:    scene,
		states:   make([]State, scene.Len()),
		selected: NoMark,
	}
}

// Handle applies ev. Transitions are scheduled, not awaited; the scene's
// timeline resolves overlapping ones by last write.
func (c *Controller) Handle(ev Event) {
	if ev.Mark >= c.scene.Len() || ev.Mark < NoMark {
		return
	}
	hover := c.scene.Timing.Hover

	for i := range c.states {
		c.states[i] = Next(i, c.states[i], ev)
		to, fields, ok := Respond(i, c.scene.Baseline(i), ev)
		if !ok {
			continue
		}
		c.scene.SetHighlighted(i, c.states[i] == Hovered)
		c.scene.Transition(join.Target{
			Mark:     i,
			Fields:   fields,
			To:       to,
			Duration: hover,
			Ease:     join.CubicInOut,
		})
	}

	if ev.Kind == Click {
		// A click on a mark never reaches the background handler.
		if ev.Mark == NoMark {
			c.selected = NoMark
			c.tooltip = Tooltip{}
			return
		}
		c.selected = ev.Mark
		c.tooltip = TooltipFor(c.scene.Mark(ev.Mark).Record, ev.X, ev.Y)
	}
}

// State returns the state of mark i.
func (c *Controller) State(i int) State { return c.states[i] }

// Selected returns the selected mark, if any.
func (c *Controller) Selected() (int, bool) {
	return c.selected, c.selected != NoMark
}

// Tooltip returns the tooltip as currently shown.
func (c *Controller) Tooltip() Tooltip { return c.tooltip }

// Scene returns the controlled scene.
func (c *Controller) Scene() *join.Scene { return c.scene }

// Advance moves the scene's animation clock forward.
func (c *Controller) Advance(dt time.Duration) { c.scene.Timeline.Advance(dt) }
