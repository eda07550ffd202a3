package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func NewApp(mode string) *Model {
	return &Model{
		state:     StateWelcome,
		mode:      mode,
		welcome:   NewWelcome(mode),
		dashboard: NewDashboard(NewAPIClient(), NewEventsClient()),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && (m.state == StateWelcome || m.err != nil) {
			return m, tea.Quit
		}

		// in the dashboard, ctrl+c goes back to welcome
		if msg.String() == "ctrl+c" && m.state == StateDashboard {
			m.state = StateWelcome
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.dashboard, _ = m.dashboard.Update(msg)
		return m, nil

	case ErrorMsg:
		m.err = msg.err
		return m, nil

	case EnterDashboardMsg:
		m.state = StateDashboard
		return m, m.dashboard.Init()
	}

	switch m.state {
	case StateWelcome:
		var cmd tea.Cmd
		m.welcome, cmd = m.welcome.Update(msg)
		return m, cmd

	case StateDashboard:
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m *Model) View() string {
	if m.err != nil {
		return errorView(m.err)
	}

	switch m.state {
	case StateWelcome:
		return m.welcome.View()

	case StateDashboard:
		return m.dashboard.View()

	default:
		return "Unknown state"
	}
}

func errorView(err error) string {
	return fmt.Sprintf("\n  Error: %v\n\n  Press Ctrl+C to exit\n", err)
}
