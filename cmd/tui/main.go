package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dd0wney/cluso-sphere/pkg/config"
	"github.com/dd0wney/cluso-sphere/pkg/console"
	"github.com/dd0wney/cluso-sphere/pkg/logging"
	"github.com/dd0wney/cluso-sphere/pkg/scene"
	"github.com/dd0wney/cluso-sphere/pkg/session"
	"github.com/dd0wney/cluso-sphere/pkg/visualization"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	historyBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#444444")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	sceneView view = iota
	nodesView
	graphView
	consoleView
	viewCount
)

var viewNames = []string{"Scene", "Nodes", "Graph", "Console"}

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Undo     key.Binding
	Redo     key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "execute"),
	),
	Undo: key.NewBinding(
		key.WithKeys("ctrl+z"),
		key.WithHelp("ctrl+z", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "redo"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Undo, k.Redo, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Enter},
		{k.Up, k.Down},
		{k.Undo, k.Redo, k.Quit},
	}
}

// passLog collects the names of the nodes each propagation pass touched. It
// is shared by pointer because bubbletea copies the model.
type passLog struct {
	names []string
}

type model struct {
	sess        *session.Session
	interp      *console.Interpreter
	currentView view
	input       textinput.Model
	transcript  viewport.Model
	lines       []string
	nodeTable   table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	message     string
	messageErr  bool
	startTime   time.Time
	passes      *passLog
	lastPass    []string
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func initialModel(sess *session.Session) model {
	ti := textinput.New()
	ti.Placeholder = "line 1,0,0 0,1,0"
	ti.CharLimit = 200
	ti.Width = 60
	ti.Focus()

	columns := []table.Column{
		{Title: "Name", Width: 8},
		{Title: "ID", Width: 5},
		{Title: "Construction", Width: 15},
		{Title: "Parents", Width: 16},
		{Title: "Value", Width: 50},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	passes := &passLog{}
	sess.OnAnyChange(func(c scene.Change) {
		passes.names = append(passes.names, c.Name)
	})

	m := model{
		sess:        sess,
		interp:      console.New(sess),
		currentView: consoleView,
		input:       ti,
		transcript:  viewport.New(80, 14),
		nodeTable:   t,
		help:        help.New(),
		keys:        keys,
		startTime:   time.Now(),
		passes:      passes,
	}
	m.refreshNodes()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.transcript.Width = max(msg.Width-6, 20)
		m.transcript.Height = max(msg.Height-16, 5)

	case tickMsg:
		return m, tickCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.switchView((m.currentView + 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.switchView((m.currentView + viewCount - 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.Undo):
			return m.run("undo")

		case key.Matches(msg, m.keys.Redo):
			return m.run("redo")

		case key.Matches(msg, m.keys.Enter):
			if m.currentView == consoleView {
				line := m.input.Value()
				m.input.SetValue("")
				return m.run(line)
			}
		}
	}

	// Update focused component
	switch m.currentView {
	case consoleView:
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		m.transcript, cmd = m.transcript.Update(msg)
		cmds = append(cmds, cmd)
	case nodesView:
		m.nodeTable, cmd = m.nodeTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) switchView(v view) {
	m.currentView = v
	if v == consoleView {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// run executes one console line and records it in the transcript
func (m model) run(line string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(line) == "" {
		return m, nil
	}
	m.passes.names = m.passes.names[:0]
	out, err := m.interp.Exec(line)
	if errors.Is(err, console.ErrExit) {
		return m, tea.Quit
	}

	m.lines = append(m.lines, "sphere> "+line)
	if err != nil {
		m.message = err.Error()
		m.messageErr = true
		m.lines = append(m.lines, errorStyle.Render("✗ "+err.Error()))
	} else {
		m.message = firstLine(out)
		m.messageErr = false
		if out != "" {
			m.lines = append(m.lines, out)
		}
	}
	m.lastPass = append([]string(nil), m.passes.names...)
	m.transcript.SetContent(strings.Join(m.lines, "\n"))
	m.transcript.GotoBottom()
	m.refreshNodes()
	return m, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func (m *model) refreshNodes() {
	g := m.sess.Graph()
	nodes := g.Nodes()
	rows := make([]table.Row, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, table.Row{
			n.Name(),
			fmt.Sprintf("%d", n.ID()),
			string(n.Construction()),
			parentNames(g, n),
			console.FormatState(n.State()),
		})
	}
	m.nodeTable.SetRows(rows)
}

func parentNames(g *scene.Graph, n scene.Node) string {
	parents := n.Parents()
	if len(parents) == 0 {
		return "-"
	}
	names := make([]string, 0, len(parents))
	for _, id := range parents {
		if p, err := g.Get(id); err == nil {
			names = append(names, p.Name())
		}
	}
	return strings.Join(names, " ")
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("◍ Cluso Sphere"))
	s.WriteString("\n\n")

	// Tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case sceneView:
		s.WriteString(m.renderScene())
	case nodesView:
		s.WriteString(m.renderNodes())
	case graphView:
		s.WriteString(m.renderGraph())
	case consoleView:
		s.WriteString(m.renderConsole())
	}

	// Message
	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(m.renderStatus())

	// Help
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	var renderedTabs []string
	for i, tab := range viewNames {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderScene() string {
	g := m.sess.Graph()
	h := m.sess.History()

	var counts strings.Builder
	for _, v := range scene.Variants {
		fmt.Fprintf(&counts, "%-13s %d\n", v.String()+":", g.Count(v))
	}

	statsContent := fmt.Sprintf(`Scene
━━━━━━━━━━━━━━━
Nodes:        %d
%s
History
━━━━━━━━━━━━━━━
Position:     %d/%d
Uptime:       %s`,
		g.Len(),
		counts.String(),
		h.Cursor(), h.Len(),
		time.Since(m.startTime).Round(time.Second),
	)

	quickActions := `Quick Actions
━━━━━━━━━━━━━━━
[Tab]       Navigate views
[Ctrl+Z]    Undo
[Ctrl+Y]    Redo
[Ctrl+C]    Quit

Try
━━━━━━━━━━━━━━━
point 0,0,1
antipode P-1
line P-1 P-2
move P-1 1,0,1`

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top,
			statsBoxStyle.Render(statsContent),
			statsBoxStyle.Render(quickActions)),
	)
}

func (m model) renderNodes() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Node Browser"))
	s.WriteString("\n\n")
	s.WriteString(m.nodeTable.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Navigate with ↑/↓"))

	return contentStyle.Render(s.String())
}

func (m model) renderGraph() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Dependencies"))
	s.WriteString("\n\n")
	s.WriteString(historyBoxStyle.Render(m.generateGraphViz()))

	return contentStyle.Render(s.String())
}

// generateGraphViz draws one row per dependency level, free nodes on top.
// Nodes that do not currently exist are shown in parentheses.
func (m model) generateGraphViz() string {
	g := m.sess.Graph()
	if g.Len() == 0 {
		return "No nodes to visualize\n\nCreate some in the Console view!"
	}

	levels, err := visualization.Levels(g.Digraph())
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	width := max(m.width-10, 40)
	layout := visualization.NewHierarchicalLayout(&visualization.LayoutConfig{
		Width:   float64(width),
		Height:  float64(2 * len(levels)),
		Padding: 1,
	})
	positions, err := layout.ComputeLayout(g.Digraph())
	if err != nil {
		return errorStyle.Render(err.Error())
	}

	rows := make([]string, len(levels))
	for i, level := range levels {
		row := []rune(strings.Repeat(" ", width))
		for _, id := range level {
			n := g.MustGet(id)
			name := []rune(n.Name())
			if !n.Exists() {
				name = []rune("(" + n.Name() + ")")
			}
			col := int(positions[id].X) - len(name)/2
			col = min(max(col, 0), width-len(name))
			copy(row[col:], name)
		}
		rows[i] = fmt.Sprintf("%d │ %s", i, strings.TrimRight(string(row), " "))
	}
	return strings.Join(rows, "\n")
}

func (m model) renderConsole() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Console"))
	s.WriteString("\n\n")
	s.WriteString(historyBoxStyle.Render(m.transcript.View()))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())

	return contentStyle.Render(s.String())
}

func (m model) renderStatus() string {
	h := m.sess.History()
	status := fmt.Sprintf("session %.8s │ %d nodes │ undo %d redo %d",
		m.sess.ID(), m.sess.Graph().Len(), h.Cursor(), h.Len()-h.Cursor())
	if len(m.lastPass) > 0 {
		status += " │ updated " + strings.Join(m.lastPass, " ")
	}
	return statusStyle.Render(status)
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	loadPath := flag.String("load", "", "Snapshot to load at startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// the terminal belongs to the UI, so the session does not log
	sess := session.New(cfg, session.WithLogger(logging.NopLogger{}))
	m := initialModel(sess)
	if *loadPath != "" {
		loaded, _ := m.run("load " + *loadPath)
		m = loaded.(model)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
