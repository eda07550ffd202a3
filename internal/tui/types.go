package tui

import (
	"net/http"
	"sync"

	"codeberg.org/tubetrack/server/internal/attribution"
	"codeberg.org/tubetrack/server/internal/events"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/gorilla/websocket"
)

// represents the current state of the TUI
type AppState int

const (
	StateWelcome AppState = iota
	StateDashboard
)

// main TUI application model
type Model struct {
	state     AppState
	mode      string
	width     int
	height    int
	err       error
	welcome   *Welcome
	dashboard *DashboardModel
}

// sent when an error occurs
type ErrorMsg struct {
	err error
}

// sent to transition to the dashboard state
type EnterDashboardMsg struct{}

// impact report of every tracked video
type DashboardModel struct {
	api         *APIClient
	events      *EventsClient
	viewport    viewport.Model
	spinner     spinner.Model
	renderer    *glamour.TermRenderer
	results     []attribution.Result
	markdown    string
	log         []string
	width       int
	height      int
	isFetching  bool
	ready       bool
	lastErr     error
	rendererErr error
	style       string
}

// sent when /impact returned
type ImpactLoadedMsg struct {
	results []attribution.Result
}

type ImpactErrorMsg struct {
	err error
}

// sent when the server accepted a manual run
type RunAcceptedMsg struct{}

type RunErrorMsg struct {
	err error
}

// one event from the server's websocket stream
type EventMsg struct {
	event events.Event
}

// sent when the event stream connected or dropped
type EventsConnectedMsg struct{}

type EventsClosedMsg struct {
	err error
}

// welcome screen model
type Welcome struct {
	mode     string
	input    string
	commands []Command
}

// represents an available TUI command
type Command struct {
	Name        string
	Description string
	Available   bool
}

// talks to the REST API with a bearer token
type APIClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// reads run events from the websocket stream
type EventsClient struct {
	endpoint  string
	token     string
	conn      *websocket.Conn
	incoming  chan events.Event
	connected bool
	mu        sync.Mutex
}
