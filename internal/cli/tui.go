package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/trackviz/pkg/interact"
)

// frameInterval is the animation step of the explorer, about 60 fps.
const frameInterval = 16 * time.Millisecond

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	tooltipStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorGreen).Padding(0, 1)
	stateStyles  = map[interact.State]lipgloss.Style{
		interact.Idle:    lipgloss.NewStyle().Foreground(colorGray),
		interact.Hovered: lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
		interact.Dimmed:  lipgloss.NewStyle().Foreground(colorDim),
	}
)

// =============================================================================
// ExploreModel - keyboard-driven pointer over the chart's marks
// =============================================================================

type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// ExploreModel is the bubbletea model of the explore command. The cursor
// plays the pointer: moving it leaves the old mark and enters the new one.
type ExploreModel struct {
	ctrl   *interact.Controller
	Cursor int // interact.NoMark while the pointer is outside every mark
	Height int
	Offset int
}

// NewExploreModel creates an explorer with the pointer outside the chart.
func NewExploreModel(ctrl *interact.Controller) ExploreModel {
	return ExploreModel{ctrl: ctrl, Cursor: interact.NoMark, Height: 15}
}

func (m ExploreModel) Init() tea.Cmd {
	return nextFrame()
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := m.ctrl.Scene().Len()

	switch msg := msg.(type) {
	case frameMsg:
		m.ctrl.Advance(frameInterval)
		return m, nextFrame()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m = m.moveTo(m.Cursor - 1)
			}
		case "down", "j":
			if m.Cursor < n-1 {
				m = m.moveTo(m.Cursor + 1)
			}
		case "tab":
			// pointer leaves the chart
			if m.Cursor != interact.NoMark {
				m.ctrl.Handle(interact.Leave(m.Cursor))
				m.Cursor = interact.NoMark
			}
		case "enter", " ":
			if m.Cursor != interact.NoMark {
				a := m.ctrl.Scene().Mark(m.Cursor).Attrs
				m.ctrl.Handle(interact.ClickMark(m.Cursor, a.X, a.Y))
			}
		case "esc":
			m.ctrl.Handle(interact.ClickBackground())
		}

	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

// moveTo leaves the current mark, if any, and enters mark i.
func (m ExploreModel) moveTo(i int) ExploreModel {
	if m.Cursor != interact.NoMark {
		m.ctrl.Handle(interact.Leave(m.Cursor))
	}
	m.Cursor = i
	m.ctrl.Handle(interact.Enter(i))

	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m ExploreModel) View() string {
	var b strings.Builder
	scene := m.ctrl.Scene()

	b.WriteString(StyleTitle.Render("Explore"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ hover  ⏎ click  esc background  tab leave  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, scene.Len())
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		mk := scene.Mark(i)
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			mk.Record.Title,
			m.ctrl.State(i).String(),
			strconv.FormatFloat(mk.Attrs.Radius, 'f', 1, 64),
			strconv.FormatFloat(mk.Attrs.Opacity, 'f', 2, 64),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Track", "State", "r", "Opacity").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			}
			return stateStyles[m.ctrl.State(m.Offset+row)]
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if tip := m.ctrl.Tooltip(); tip.Visible {
		b.WriteString(tooltipStyle.Render(strings.Join(tip.Lines(), "\n")))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d marks · t=%s", scene.Len(), scene.Timeline.Now().Round(time.Millisecond))))
	return b.String()
}
