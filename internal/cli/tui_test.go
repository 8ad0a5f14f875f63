package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/trackviz/pkg/interact"
	"github.com/matzehuels/trackviz/pkg/pipeline"
)

func newTestExplorer(t *testing.T) ExploreModel {
	t.Helper()
	c, _ := newTestCLI(t)
	ws, opts, _, err := c.loadWorkingSet(context.Background(), "tracks.csv", &chartFlags{})
	if err != nil {
		t.Fatal(err)
	}
	scene, _, err := pipeline.Build(ws, opts)
	if err != nil {
		t.Fatal(err)
	}
	return NewExploreModel(interact.NewController(scene))
}

func press(m ExploreModel, keys ...tea.KeyMsg) ExploreModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(ExploreModel)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func TestExploreStartsOutside(t *testing.T) {
	m := newTestExplorer(t)
	if m.Cursor != interact.NoMark {
		t.Errorf("Cursor = %d, want NoMark", m.Cursor)
	}
	for i := 0; i < m.ctrl.Scene().Len(); i++ {
		if s := m.ctrl.State(i); s != interact.Idle {
			t.Errorf("mark %d is %s before any event", i, s)
		}
	}
}

func TestExploreHover(t *testing.T) {
	m := press(newTestExplorer(t), keyDown)
	if m.Cursor != 0 {
		t.Fatalf("Cursor = %d, want 0", m.Cursor)
	}
	if m.ctrl.State(0) != interact.Hovered {
		t.Errorf("mark 0 is %s, want hovered", m.ctrl.State(0))
	}
	if m.ctrl.State(1) != interact.Dimmed || m.ctrl.State(2) != interact.Dimmed {
		t.Error("other marks are not dimmed")
	}

	m = press(m, keyDown)
	if m.ctrl.State(0) != interact.Dimmed || m.ctrl.State(1) != interact.Hovered {
		t.Errorf("states after moving = %s, %s", m.ctrl.State(0), m.ctrl.State(1))
	}

	m = press(m, keyUp, keyUp)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want to stop at 0", m.Cursor)
	}

	m = press(m, keyTab)
	if m.Cursor != interact.NoMark {
		t.Errorf("Cursor = %d after tab", m.Cursor)
	}
	for i := 0; i < 3; i++ {
		if m.ctrl.State(i) != interact.Idle {
			t.Errorf("mark %d is %s after leaving", i, m.ctrl.State(i))
		}
	}
}

func TestExploreClick(t *testing.T) {
	m := press(newTestExplorer(t), keyDown, keyEnter)
	tip := m.ctrl.Tooltip()
	if !tip.Visible {
		t.Fatal("tooltip hidden after clicking a mark")
	}
	if sel, ok := m.ctrl.Selected(); !ok || sel != 0 {
		t.Errorf("Selected() = %d, %v", sel, ok)
	}
	if !strings.Contains(m.View(), "Alpha") {
		t.Error("view does not show the selected track")
	}

	m = press(m, keyEsc)
	if m.ctrl.Tooltip().Visible {
		t.Error("tooltip still visible after a background click")
	}
	if _, ok := m.ctrl.Selected(); ok {
		t.Error("selection survived a background click")
	}
}

func TestExploreQuit(t *testing.T) {
	m := newTestExplorer(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestExploreFrameAdvancesTimeline(t *testing.T) {
	m := newTestExplorer(t)
	before := m.ctrl.Scene().Timeline.Now()
	next, cmd := m.Update(frameMsg{})
	if cmd == nil {
		t.Error("frame did not schedule the next one")
	}
	if now := next.(ExploreModel).ctrl.Scene().Timeline.Now(); now <= before {
		t.Errorf("timeline did not advance: %s -> %s", before, now)
	}
}
