package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"codeberg.org/tubetrack/server/internal/events"
	"codeberg.org/tubetrack/server/internal/export"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

const dashboardHeading = "Playlist impact"

// returns a new dashboard reading from the given clients
func NewDashboard(api *APIClient, stream *EventsClient) *DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = infoStyle

	return &DashboardModel{
		api:     api,
		events:  stream,
		spinner: s,
		style:   "auto",
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	m.isFetching = true

	cmds := []tea.Cmd{m.spinner.Tick, m.api.ImpactCmd()}
	if m.events != nil && !m.events.IsConnected() {
		cmds = append(cmds, m.events.ConnectCmd())
	}

	return tea.Batch(cmds...)
}

func (m *DashboardModel) Update(msg tea.Msg) (*DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if m.isFetching {
				return m, nil
			}
			m.isFetching = true
			return m, tea.Batch(m.spinner.Tick, m.api.ImpactCmd())

		case "s":
			m.addLog("starting snapshot run")
			return m, m.api.TriggerRunCmd()
		}

	case spinner.TickMsg:
		if !m.isFetching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ImpactLoadedMsg:
		m.isFetching = false
		m.lastErr = nil
		m.SetResults(msg)
		return m, nil

	case ImpactErrorMsg:
		m.isFetching = false
		m.lastErr = msg.err
		return m, nil

	case RunAcceptedMsg:
		m.addLog(successStyle.Render("run accepted"))
		return m, nil

	case RunErrorMsg:
		m.addLog(errorStyle.Render("run: " + msg.err.Error()))
		return m, nil

	case EventsConnectedMsg:
		return m, m.events.NextCmd()

	case EventsClosedMsg:
		if msg.err != nil {
			m.addLog(errorStyle.Render("events: " + msg.err.Error()))
		} else {
			m.addLog("event stream closed")
		}
		return m, nil

	case EventMsg:
		line, refresh := describeEvent(msg.event)
		if line != "" {
			m.addLog(line)
		}

		cmds := []tea.Cmd{m.events.NextCmd()}
		if refresh && !m.isFetching {
			m.isFetching = true
			cmds = append(cmds, m.spinner.Tick, m.api.ImpactCmd())
		}
		return m, tea.Batch(cmds...)
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// replaces the shown results and re-renders the report
func (m *DashboardModel) SetResults(msg ImpactLoadedMsg) {
	m.results = msg.results

	var buf bytes.Buffer
	if err := export.MarkdownSummary(&buf, dashboardHeading, m.results); err != nil {
		m.lastErr = err
		return
	}
	m.markdown = buf.String()

	m.refreshContent()
}

func (m *DashboardModel) resize() {
	headerHeight := 3
	footerHeight := maxLogLines + 3
	height := max(m.height-headerHeight-footerHeight, 3)

	if !m.ready {
		m.viewport = viewport.New(m.width, height)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = height
	}

	m.renderer = nil
	m.refreshContent()
}

func (m *DashboardModel) refreshContent() {
	if !m.ready {
		return
	}

	m.viewport.SetContent(m.rendered())
}

// renders the markdown report, falling back to the raw text
func (m *DashboardModel) rendered() string {
	if m.markdown == "" {
		return ""
	}

	if m.renderer == nil {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(max(m.width-4, 20))}
		if m.style == "auto" {
			opts = append(opts, glamour.WithAutoStyle())
		} else {
			opts = append(opts, glamour.WithStandardStyle(m.style))
		}

		r, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			m.rendererErr = err
			return m.markdown
		}
		m.renderer = r
	}

	out, err := m.renderer.Render(m.markdown)
	if err != nil {
		m.rendererErr = err
		return m.markdown
	}

	return out
}

func (m *DashboardModel) addLog(line string) {
	stamp := time.Now().Format("15:04:05")
	m.log = append(m.log, infoStyle.Render(stamp)+" "+line)

	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

func (m *DashboardModel) View() string {
	var b strings.Builder

	header := headerStyle.Render("tubetrack") + "  " + infoStyle.Render(fmt.Sprintf("%d tracked videos", len(m.results)))
	if m.isFetching {
		header += "  " + m.spinner.View() + infoStyle.Render(" loading")
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	switch {
	case m.lastErr != nil:
		b.WriteString(errorStyle.Render("error: " + m.lastErr.Error()))
	case m.ready:
		b.WriteString(m.viewport.View())
	default:
		b.WriteString(m.markdown)
	}
	b.WriteString("\n")

	b.WriteString(borderStyle.Render(strings.Join(m.activity(), "\n")))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r refresh • s run snapshots • ↑/↓ scroll • ctrl+c back"))

	return b.String()
}

func (m *DashboardModel) activity() []string {
	if len(m.log) == 0 {
		return []string{infoStyle.Render("no activity yet")}
	}

	return m.log
}

// turns a server event into a log line and reports whether the impact
// report should be reloaded
func describeEvent(event events.Event) (string, bool) {
	switch event.Type {
	case events.TypeRunStarted:
		var p events.RunStartedPayload
		_ = json.Unmarshal(event.Payload, &p)
		return fmt.Sprintf("run %s started (%s)", shortID(p.RunID), p.Trigger), false

	case events.TypeVideoRecorded:
		var p events.VideoRecordedPayload
		_ = json.Unmarshal(event.Payload, &p)
		return fmt.Sprintf("recorded %s: %d views in %d playlists", p.VideoID, p.TotalViews, len(p.Playlists)), false

	case events.TypeVideoFailed:
		var p events.VideoFailedPayload
		_ = json.Unmarshal(event.Payload, &p)
		return errorStyle.Render(fmt.Sprintf("failed %s: %s", p.VideoID, p.Reason)), false

	case events.TypeAccountFailed:
		var p events.AccountFailedPayload
		_ = json.Unmarshal(event.Payload, &p)
		return errorStyle.Render("account failed: " + p.Reason), false

	case events.TypeRunFinished:
		var p events.RunFinishedPayload
		_ = json.Unmarshal(event.Payload, &p)
		line := fmt.Sprintf("run %s finished: %d recorded, %d not found, %d failed", shortID(p.RunID), p.Recorded, p.NotFound, p.Failed)
		return successStyle.Render(line), true

	case events.TypeServerShutdown:
		return errorStyle.Render("server shutting down"), false

	default:
		return "", false
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}
