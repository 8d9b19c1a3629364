package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recera/vtc/pkg/compiler/ast"
)

// KeyMap defines the explorer's keyboard shortcuts
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	PageUp key.Binding
	PageDn key.Binding
	Top    key.Binding
	Bottom key.Binding
	Quit   key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "b"),
		key.WithHelp("pgup", "page up"),
	),
	PageDn: key.NewBinding(
		key.WithKeys("pgdown", "f", " "),
		key.WithHelp("pgdn", "page down"),
	),
	Top: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "bottom"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.PageUp, k.PageDn}, {k.Top, k.Bottom, k.Quit}}
}

// footerHeight is the border, location line, source line and help line
const footerHeight = 4

// Explorer is a bubbletea model for browsing a template's syntax tree. The
// footer shows the selected node's location and source text.
type Explorer struct {
	filename string
	rows     []Row
	cursor   int

	viewport viewport.Model
	help     help.Model
	keys     KeyMap
	ready    bool
	width    int
}

// NewExplorer creates an explorer over root, parsed from filename
func NewExplorer(filename string, root *ast.Root) Explorer {
	return Explorer{
		filename: filename,
		rows:     Rows(root),
		help:     help.New(),
		keys:     DefaultKeyMap,
	}
}

// Cursor returns the index of the selected row
func (m Explorer) Cursor() int {
	return m.cursor
}

// Selected returns the selected node
func (m Explorer) Selected() ast.Node {
	return m.rows[m.cursor].Node
}

// Init implements tea.Model
func (m Explorer) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		height := max(msg.Height-footerHeight-1, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.PageUp):
			m.move(-m.page())
		case key.Matches(msg, m.keys.PageDn):
			m.move(m.page())
		case key.Matches(msg, m.keys.Top):
			m.move(-len(m.rows))
		case key.Matches(msg, m.keys.Bottom):
			m.move(len(m.rows))
		}
		return m, nil
	}
	return m, nil
}

func (m *Explorer) page() int {
	if m.ready && m.viewport.Height > 1 {
		return m.viewport.Height - 1
	}
	return 10
}

func (m *Explorer) move(delta int) {
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	m.refresh()
}

// refresh redraws the tree and scrolls the cursor into view
func (m *Explorer) refresh() {
	if !m.ready {
		return
	}
	lines := make([]string, len(m.rows))
	for i, row := range m.rows {
		line := renderRow(row)
		if i == m.cursor {
			line = selectedStyle.Render(row.Prefix + row.Kind + " " + row.Detail)
		}
		lines[i] = line
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// View implements tea.Model
func (m Explorer) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := titleStyle.Render(m.filename) + " " + mutedStyle.Render(
		strings.Repeat("─", max(m.width-lipgloss.Width(m.filename)-1, 0)))

	node := m.Selected()
	loc := node.Location()
	where := "synthetic"
	if !loc.IsSynthetic() {
		where = loc.String()
	}
	source := loc.Source
	if i := strings.IndexByte(source, '\n'); i >= 0 {
		source = source[:i] + " …"
	}

	footer := footerStyle.Width(m.width).Render(strings.Join([]string{
		kindStyle.Render(node.Type().String()) + " " + mutedStyle.Render(where),
		detailStyle.Render(truncate(source)),
		m.help.View(m.keys),
	}, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
}
