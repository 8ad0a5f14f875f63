package join

import (
	"math"
	"sort"
	"strings"

	"github.com/matzehuels/trackviz/pkg/errors"
)

// Easing maps normalized time in [0,1] to progress. Every easing returns
// 0 at t=0 and 1 at t=1; overshooting curves may leave [0,1] in between.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// CubicInOut accelerates then decelerates.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// backOvershoot is the standard back-easing overshoot (about 10%).
const backOvershoot = 1.70158

// BackOut overshoots the target slightly before settling.
func BackOut(t float64) float64 {
	t--
	return t*t*((backOvershoot+1)*t+backOvershoot) + 1
}

const (
	b1 = 4.0 / 11
	b2 = 6.0 / 11
	b3 = 8.0 / 11
	b4 = 3.0 / 4
	b5 = 9.0 / 11
	b6 = 10.0 / 11
	b7 = 15.0 / 16
	b8 = 21.0 / 22
	b9 = 63.0 / 64
	b0 = 1 / b1 / b1
)

// BounceOut bounces against the target like a dropped ball.
func BounceOut(t float64) float64 {
	switch {
	case t >= 1:
		return 1
	case t < b1:
		return b0 * t * t
	case t < b3:
		t -= b2
		return b0*t*t + b4
	case t < b6:
		t -= b5
		return b0*t*t + b7
	default:
		t -= b8
		return b0*t*t + b9
	}
}

// ElasticOut returns an elastic easing with the given amplitude (>= 1) and
// period. It oscillates around the target with decaying amplitude.
func ElasticOut(amplitude, period float64) Easing {
	a := math.Max(1, amplitude)
	p := period / (2 * math.Pi)
	s := math.Asin(1/a) * p
	return func(t float64) float64 {
		if t >= 1 {
			return 1
		}
		return 1 - a*tpmt(t)*math.Sin((t+s)/p)
	}
}

// tpmt is 2^(-10t) rescaled so that tpmt(0) = 1 and tpmt(1) = 0.
func tpmt(x float64) float64 {
	return (math.Pow(2, -10*x) - 0.0009765625) * 1.0009775171065494
}

// DefaultEntranceEasing is the elastic curve marks grow in with.
var DefaultEntranceEasing = ElasticOut(1, 0.3)

var easings = map[string]Easing{
	"linear":  Linear,
	"cubic":   CubicInOut,
	"back":    BackOut,
	"bounce":  BounceOut,
	"elastic": DefaultEntranceEasing,
}

// EasingNames lists the names accepted by ParseEasing.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseEasing looks up an easing by name. The empty name selects the
// default entrance easing.
func ParseEasing(name string) (Easing, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultEntranceEasing, nil
	}
	e, ok := easings[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown easing %q (want one of %s)", name, strings.Join(EasingNames(), ", "))
	}
	return e, nil
}
