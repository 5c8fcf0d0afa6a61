package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/viewer"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	rootActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	markStyle         = lipgloss.NewStyle().Foreground(colorGreen)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// BrowseModel - Interactive tree browser
// =============================================================================

// row is one displayed member with its depth below the active root.
type row struct {
	member *family.Member
	depth  int
}

// BrowseModel is the bubbletea model behind famtree browse. It drives a
// viewer.State the same way the browser viewer does: switching roots and
// selecting members.
type BrowseModel struct {
	State       *viewer.State
	ShowZeroAge bool

	Cursor int
	Offset int
	Height int
	Err    error

	rows []row
}

// NewBrowseModel creates a model for a loaded state.
func NewBrowseModel(st *viewer.State, showZeroAge bool) BrowseModel {
	m := BrowseModel{State: st, ShowZeroAge: showZeroAge, Height: 15}
	m.rows = displayedRows(st.ActiveRoot())
	return m
}

// displayedRows lists the subtree of root in pre-order.
func displayedRows(root *family.Member) []row {
	if root == nil {
		return nil
	}
	base := root.Depth()
	var rows []row
	root.Walk(func(m *family.Member) bool {
		rows = append(rows, row{member: m, depth: m.Depth() - base})
		return true
	})
	return rows
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.Err = nil
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "enter", " ":
			if len(m.rows) > 0 {
				m.Err = m.State.OnNodeClicked(m.rows[m.Cursor].member.ID)
			}
		case "left", "h":
			m.cycleRoot(-1)
		case "right", "l", "tab":
			m.cycleRoot(1)
		case "c":
			m.State.ClearSelection()
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				m.switchRoot(int(key[0] - '1'))
			}
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
		m.scroll()
	}
	return m, nil
}

// switchRoot activates the root option at index i.
func (m *BrowseModel) switchRoot(i int) {
	opts := m.State.RootOptions()
	if i < 0 || i >= len(opts) {
		m.Err = errors.New(errors.ErrCodeSelection, "no root option %d", i+1)
		return
	}
	if m.Err = m.State.SetActiveRoot(opts[i].ID); m.Err != nil {
		return
	}
	m.rows = displayedRows(m.State.ActiveRoot())
	m.Cursor, m.Offset = 0, 0
}

// cycleRoot moves to the previous or next root option, wrapping around.
func (m *BrowseModel) cycleRoot(step int) {
	opts := m.State.RootOptions()
	if len(opts) == 0 {
		return
	}
	active := m.State.ActiveRoot()
	cur := 0
	for i, o := range opts {
		if o == active {
			cur = i
		}
	}
	m.switchRoot((cur + step + len(opts)) % len(opts))
}

func (m *BrowseModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Family Tree Viewer"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  ⏎ select  ←/→ or 1-9 root  c clear  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.rootsLine())
	b.WriteString("\n\n")

	selected := m.State.Selected()
	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := " "
		if r.member == selected {
			mark = markStyle.Render("●")
		}
		line := fmt.Sprintf("%s%s %s%s", cursor, mark, strings.Repeat("  ", r.depth), r.member.Name)
		if r.member.Relationship != "" && r.depth > 0 {
			line += listDimStyle.Render("  " + r.member.Relationship)
		}
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  frames drawn: %d", m.Cursor+1, len(m.rows), m.State.Frames())))
	b.WriteString("\n")

	if selected != nil {
		b.WriteString("\n")
		b.WriteString(detailBoxStyle.Render(m.details(selected)))
		b.WriteString("\n")
	}
	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(styleIconError.Render(iconError) + " " + errors.UserMessage(m.Err))
		b.WriteString("\n")
	}
	return b.String()
}

// rootsLine shows the root options with the active one highlighted.
func (m BrowseModel) rootsLine() string {
	active := m.State.ActiveRoot()
	parts := []string{StyleDim.Render("Root:")}
	for i, o := range m.State.RootOptions() {
		label := fmt.Sprintf("%d %s", i+1, o.Name)
		if o == active {
			parts = append(parts, rootActiveStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, listDimStyle.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

// details describes a member the way the viewer's detail panel does.
func (m BrowseModel) details(mem *family.Member) string {
	lines := []string{StyleValue.Bold(true).Render(mem.Name)}
	if mem.Relationship != "" {
		lines = append(lines, "Relation: "+mem.Relationship)
	}
	if mem.HasAge(m.ShowZeroAge) {
		lines = append(lines, "Age: "+mem.AgeText())
	}
	lines = append(lines, StyleDim.Render("Image: "+mem.AvatarURL(family.DefaultImage)))
	return strings.Join(lines, "\n")
}
