package tui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"codeberg.org/tubetrack/server/internal/events"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

// creates an events client from TUBETRACK_WS_ENDPOINT and TUBETRACK_TOKEN
func NewEventsClient() *EventsClient {
	return &EventsClient{
		endpoint: getEnv("TUBETRACK_WS_ENDPOINT", "ws://localhost:8080/api/v1/ws"),
		token:    getEnv("TUBETRACK_TOKEN", ""),
	}
}

// Connect establishes the WebSocket connection
func (c *EventsClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	target := c.endpoint
	if c.token != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + "token=" + url.QueryEscape(c.token)
	}

	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // pong handler
		return nil
	})

	incoming := make(chan events.Event, 64)

	c.conn = conn
	c.incoming = incoming
	c.connected = true

	go c.readPump(conn, incoming)
	go c.pingPump(conn)

	return nil
}

// sends periodic pings to keep the connection alive
func (c *EventsClient) pingPump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()

		if !c.connected || c.conn != conn {
			c.mu.Unlock()
			return
		}

		conn.SetWriteDeadline(time.Now().Add(10 * time.Second)) //nolint:errcheck,gosec // ping
		err := conn.WriteMessage(websocket.PingMessage, nil)
		c.mu.Unlock()

		if err != nil {
			return
		}
	}
}

// forwards every decoded event to the incoming channel until the
// connection drops, then closes the channel
func (c *EventsClient) readPump(conn *websocket.Conn, incoming chan<- events.Event) {
	defer func() {
		c.mu.Lock()
		c.connected = false
		conn.Close() //nolint:errcheck,gosec // defer cleanup
		c.mu.Unlock()

		close(incoming)
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // read deadline

		var event events.Event
		if err := conn.ReadJSON(&event); err != nil {
			return
		}

		incoming <- event
	}
}

// returns whether the client is connected
func (c *EventsClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connected
}

// closes the webSocket connection
func (c *EventsClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close() //nolint:errcheck,gosec // close
		c.conn = nil
	}

	c.connected = false
}

// returns a tea.Cmd that connects to the event stream
func (c *EventsClient) ConnectCmd() tea.Cmd {
	return func() tea.Msg {
		if err := c.Connect(); err != nil {
			return EventsClosedMsg{err: err}
		}

		return EventsConnectedMsg{}
	}
}

// returns a tea.Cmd that blocks for the next event
func (c *EventsClient) NextCmd() tea.Cmd {
	c.mu.Lock()
	incoming := c.incoming
	c.mu.Unlock()

	return func() tea.Msg {
		if incoming == nil {
			return EventsClosedMsg{}
		}

		event, ok := <-incoming
		if !ok {
			return EventsClosedMsg{}
		}

		return EventMsg{event: event}
	}
}
