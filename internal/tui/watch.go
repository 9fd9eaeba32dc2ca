// Package tui implements the live status view behind 'herd ls --watch'.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/herd-sh/herd/internal/orchestrate"
	"github.com/herd-sh/herd/internal/output"
)

const refreshInterval = 2 * time.Second

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

type refreshMsg []orchestrate.Agent

// model polls the status reader on a fixed cadence. Status is always a
// fresh read of tmux state; the model never caches beyond one frame.
type model struct {
	spin   spinner.Model
	list   func() []orchestrate.Agent
	agents []orchestrate.Agent
	width  int
}

// New creates the watch program over a status listing function.
func New(list func() []orchestrate.Agent) *tea.Program {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return tea.NewProgram(model{
		spin:   sp,
		list:   list,
		agents: list(),
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.refreshAfter())
}

func (m model) refreshAfter() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshMsg(m.list())
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case refreshMsg:
		m.agents = msg
		return m, m.refreshAfter()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	s := m.spin.View() + titleStyle.Render(" agents") + "\n\n"
	if len(m.agents) == 0 {
		s += helpStyle.Render("no agents running") + "\n"
	}
	for _, a := range m.agents {
		line := output.StatusLine(a.ID, a.Status)
		if m.width > 0 {
			line = output.Truncate(line, m.width)
		}
		s += line + "\n" + output.PathLine(a.Path) + "\n"
	}
	s += "\n" + helpStyle.Render("q to quit")
	return s
}
