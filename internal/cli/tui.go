package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	pio "github.com/matzehuels/pathcover/pkg/io"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TrailBrowserModel - Interactive trail browser
// =============================================================================

// TrailBrowserModel is the bubbletea model for paging through exported
// trails. The list view shows one row per trail; enter opens the steps of
// the selected trail.
type TrailBrowserModel struct {
	Doc    *pio.Document
	Cursor int
	Offset int
	Height int

	// Detail is true while the steps of the selected trail are shown.
	Detail     bool
	StepOffset int
}

// NewTrailBrowserModel creates a browser over doc.
func NewTrailBrowserModel(doc *pio.Document) TrailBrowserModel {
	return TrailBrowserModel{Doc: doc, Height: 15}
}

func (m TrailBrowserModel) Init() tea.Cmd {
	return nil
}

func (m TrailBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Detail {
			return m.updateDetail(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "enter", "right", "l":
			if len(m.Doc.Trails) > 0 {
				m.Detail = true
				m.StepOffset = 0
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		m.move(0)
	}
	return m, nil
}

func (m TrailBrowserModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	steps := len(m.Doc.Trails[m.Cursor].Steps)
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "left", "h", "backspace":
		m.Detail = false
	case "up", "k":
		if m.StepOffset > 0 {
			m.StepOffset--
		}
	case "down", "j":
		if m.StepOffset < steps-m.Height {
			m.StepOffset++
		}
	}
	return m, nil
}

// move shifts the cursor by delta, clamped to the trail list, and scrolls
// the window so the cursor stays visible.
func (m *TrailBrowserModel) move(delta int) {
	n := len(m.Doc.Trails)
	m.Cursor = min(max(m.Cursor+delta, 0), max(n-1, 0))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m TrailBrowserModel) View() string {
	if m.Detail {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Trails"))
	if st := m.Doc.Stats; st != nil {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d states · %d actions · total length %d", st.States, st.Actions, st.TotalLength)))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ steps  q quit"))
	b.WriteString("\n\n")

	if len(m.Doc.Trails) == 0 {
		b.WriteString(listDimStyle.Render("  no trails"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Doc.Trails))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		t := m.Doc.Trails[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		first, last := "—", "—"
		if len(t.Steps) > 0 {
			first = t.Steps[0].Action
			last = t.Steps[len(t.Steps)-1].To
		}
		rows = append(rows, []string{cursor, strconv.Itoa(t.Index), strconv.Itoa(len(t.Steps)), first, last})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Trail", "Steps", "First action", "Ends at").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Doc.Trails))))
	return b.String()
}

func (m TrailBrowserModel) detailView() string {
	t := m.Doc.Trails[m.Cursor]

	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Trail %d", t.Index)))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d steps", len(t.Steps))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ scroll  ← back  q quit"))
	b.WriteString("\n\n")

	end := min(m.StepOffset+m.Height, len(t.Steps))
	for i := m.StepOffset; i < end; i++ {
		s := t.Steps[i]
		fmt.Fprintf(&b, "%s %s %s %s %s\n",
			listDimStyle.Render(fmt.Sprintf("%4d.", i+1)),
			StyleHighlight.Render(s.Action),
			listNormalStyle.Render(s.From),
			listDimStyle.Render(iconArrow),
			listNormalStyle.Render(s.To))
	}
	if end < len(t.Steps) {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("     … %d more", len(t.Steps)-end)))
		b.WriteString("\n")
	}
	return b.String()
}
