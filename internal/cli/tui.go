package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ManagerListModel - Interactive asset manager selection
// =============================================================================

// ManagerItem is one row of the asset manager picker.
type ManagerItem struct {
	Name     string
	Version  string // Empty when the binary is not available
	LockFile bool   // The project already has this manager's lock file
}

// Available reports whether the manager binary was found.
func (i ManagerItem) Available() bool {
	return i.Version != ""
}

// ManagerListModel is the bubbletea model for interactive asset manager
// selection. Managers whose binary is missing cannot be selected.
type ManagerListModel struct {
	Items    []ManagerItem
	Cursor   int
	Selected *ManagerItem
}

// NewManagerListModel creates a picker with the cursor on the first manager
// that has a lock file, else the first available one.
func NewManagerListModel(items []ManagerItem) ManagerListModel {
	m := ManagerListModel{Items: items}
	for i, item := range items {
		if item.LockFile && item.Available() {
			m.Cursor = i
			return m
		}
	}
	for i, item := range items {
		if item.Available() {
			m.Cursor = i
			return m
		}
	}
	return m
}

func (m ManagerListModel) Init() tea.Cmd {
	return nil
}

func (m ManagerListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
			}
		case "enter":
			if len(m.Items) == 0 || !m.Items[m.Cursor].Available() {
				return m, nil
			}
			item := m.Items[m.Cursor]
			m.Selected = &item
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ManagerListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Asset Manager"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(m.Items))
	for i, item := range m.Items {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		version := item.Version
		if version == "" {
			version = "not installed"
		}
		lock := ""
		if item.LockFile {
			lock = "✓"
		}
		rows = append(rows, []string{cursor, item.Name, version, lock})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Manager", "Version", "Lock").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(m.Items) {
				return lipgloss.NewStyle()
			}

			base := lipgloss.NewStyle()
			if !m.Items[row].Available() {
				base = base.Foreground(colorDim)
			} else if col == 1 {
				base = base.Foreground(colorGreen)
			}
			if row == m.Cursor {
				base = base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Items))))

	return b.String()
}
