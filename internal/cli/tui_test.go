package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	pio "github.com/matzehuels/pathcover/pkg/io"
	"github.com/matzehuels/pathcover/pkg/pathcover"
)

func testDoc(trails int) *pio.Document {
	doc := &pio.Document{Stats: &pathcover.Stats{States: 3, Actions: 4, TotalLength: 9}}
	for i := 0; i < trails; i++ {
		doc.Trails = append(doc.Trails, pio.Trail{Index: i, Steps: []pio.Step{
			{Action: "Inc", From: "init", To: "one"},
			{Action: "Halt", From: "one", To: "done"},
		}})
	}
	return doc
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m TrailBrowserModel, keys ...string) TrailBrowserModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(TrailBrowserModel)
	}
	return m
}

func TestTrailBrowserNavigation(t *testing.T) {
	m := NewTrailBrowserModel(testDoc(3))
	m.Height = 2

	m = press(m, "down", "j", "down")
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2 (clamped)", m.Cursor)
	}
	if m.Offset != 1 {
		t.Errorf("Offset = %d, want 1 to keep the cursor visible", m.Offset)
	}

	m = press(m, "up", "k", "up")
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("Cursor, Offset = %d, %d; want 0, 0", m.Cursor, m.Offset)
	}
}

func TestTrailBrowserDetail(t *testing.T) {
	m := NewTrailBrowserModel(testDoc(2))
	m = press(m, "down", "enter")
	if !m.Detail {
		t.Fatal("enter should open the trail")
	}
	view := m.View()
	if !strings.Contains(view, "Trail 1") || !strings.Contains(view, "Halt") {
		t.Errorf("detail view missing trail content:\n%s", view)
	}

	m = press(m, "esc")
	if m.Detail {
		t.Error("esc should return to the list")
	}
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1 after returning", m.Cursor)
	}
}

func TestTrailBrowserQuit(t *testing.T) {
	m := NewTrailBrowserModel(testDoc(1))
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestTrailBrowserEmpty(t *testing.T) {
	m := NewTrailBrowserModel(&pio.Document{})
	m = press(m, "down", "enter")
	if m.Detail {
		t.Error("enter on an empty list should not open a trail")
	}
	if !strings.Contains(m.View(), "no trails") {
		t.Errorf("empty view = %s", m.View())
	}
}

func TestTrailBrowserListView(t *testing.T) {
	m := NewTrailBrowserModel(testDoc(2))
	view := m.View()
	for _, want := range []string{"Trails", "total length 9", "Inc", "done", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("list view missing %q:\n%s", want, view)
		}
	}
}

func TestTrailBrowserResize(t *testing.T) {
	m := NewTrailBrowserModel(testDoc(1))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if got := next.(TrailBrowserModel).Height; got != 5 {
		t.Errorf("Height = %d, want minimum 5", got)
	}
}
