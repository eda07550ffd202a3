package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// returns a new welcome screen
func NewWelcome(mode string) *Welcome {
	commands := []Command{
		{Name: "dashboard", Description: "playlist impact of tracked videos", Available: true},
		{Name: "start", Description: "start the tubetrack server", Available: mode == "development"},
		{Name: "run", Description: "snapshot every tracked video now", Available: true},
		{Name: "quit", Description: "exit tubetrack", Available: true},
	}

	return &Welcome{
		mode:     mode,
		commands: commands,
	}
}

func (m *Welcome) Update(msg tea.Msg) (*Welcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m, m.executeCommand()
		case "backspace":
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		default:
			if len(msg.String()) == 1 {
				m.input += msg.String()
			}
		}

	case ServerStartedMsg, TrackerCompleteMsg:
		m.input = ""
		return m, nil
	}

	return m, nil
}

func (m *Welcome) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("which playlists are driving your views"))
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("mode: %s", strings.ToUpper(m.mode))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Render("commands:"))
	b.WriteString("\n\n")

	for _, cmd := range m.commands {
		if !cmd.Available {
			continue
		}
		line := fmt.Sprintf("  %s %s",
			commandStyle.Render(cmd.Name),
			commandDescStyle.Render("- "+cmd.Description),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(promptStyle.Render("> ") + inputStyle.Render(m.input+"_"))
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("type a command and press enter. press ctrl+c to quit."))

	return b.String()
}

func (m *Welcome) executeCommand() tea.Cmd {
	cmd := strings.TrimSpace(m.input)

	switch cmd {
	case "quit":
		return tea.Quit

	case "dashboard":
		return func() tea.Msg {
			return EnterDashboardMsg{}
		}

	case "start":
		if m.mode == "development" {
			return startServer
		}
		return func() tea.Msg {
			return ErrorMsg{err: fmt.Errorf("start is only available in development mode.")}
		}

	case "run":
		return runTracker

	default:
		if cmd != "" {
			return func() tea.Msg {
				return ErrorMsg{err: fmt.Errorf("unknown command: %s.", cmd)}
			}
		}
		return nil
	}
}

type ServerStartedMsg struct{}
type TrackerCompleteMsg struct{}
