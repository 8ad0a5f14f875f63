package interact

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/trackviz/pkg/catalog"
)

// Tooltip placement relative to the pointer, in pixels.
const (
	TooltipOffsetX = 15
	TooltipOffsetY = -28
)

// Tooltip is the detail box shown for the selected mark. The zero value is
// hidden.
type Tooltip struct {
	Visible   bool
	Left, Top float64

	Title      string
	Creator    string
	Year       int
	Popularity int
	Followers  string
	Duration   string
}

// TooltipFor builds the tooltip for r clicked at page position (x, y).
func TooltipFor(r catalog.Record, x, y float64) Tooltip {
	return Tooltip{
		Visible:    true,
		Left:       x + TooltipOffsetX,
		Top:        y + TooltipOffsetY,
		Title:      r.Title,
		Creator:    r.Creator,
		Year:       r.ReleaseYear,
		Popularity: r.Popularity,
		Followers:  FormatFollowers(r.Followers),
		Duration:   FormatDuration(r.DurationMinutes),
	}
}

// Lines returns the tooltip text, one entry per line.
func (t Tooltip) Lines() []string {
	if !t.Visible {
		return nil
	}
	return []string{
		t.Title,
		"by " + t.Creator,
		fmt.Sprintf("%d • %d%%", t.Year, t.Popularity),
		fmt.Sprintf("%s followers • %smin", t.Followers, t.Duration),
	}
}

// FormatFollowers abbreviates a follower count: 1.2M, 340K or the literal
// number below a thousand.
func FormatFollowers(n int64) string {
	v := float64(n)
	switch {
	case v >= 1e6:
		return strconv.FormatFloat(math.Round(v/1e5)/10, 'f', 1, 64) + "M"
	case v >= 1e3:
		return strconv.FormatFloat(math.Round(v/1e3), 'f', 0, 64) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatDuration renders minutes to one decimal place.
func FormatDuration(minutes float64) string {
	return strconv.FormatFloat(math.Round(minutes*10)/10, 'f', 1, 64)
}
