package events

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// event types pushed to dashboard clients
const (
	// a snapshot run began
	TypeRunStarted = "run_started"

	// a video snapshot was stored
	TypeVideoRecorded = "video_recorded"

	// fetching or storing one video failed
	TypeVideoFailed = "video_failed"

	// an account could not be processed
	TypeAccountFailed = "account_failed"

	// a snapshot run ended
	TypeRunFinished = "run_finished"

	// sent to a client right after it connects
	TypeConnected = "connected"

	// sent by server before shutdown
	TypeServerShutdown = "server_shutdown"

	TypeError = "error"
)

// client connection constants
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBufferSize = 256
)

// hub connection limit constants
const (
	maxConnectionsPerAccount = 5
	maxConnectionsPerIP      = 10
)

var ErrConnectionClosed = errors.New("connection closed")

// Event is one message on the wire. Sequence increases per account.
type Event struct {
	Type      string          `json:"type"`
	AccountID string          `json:"-"`
	Sequence  uint64          `json:"seq"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// creates an event with a JSON encoded payload
func NewEvent(eventType, accountID string, payload any) (*Event, error) {
	event := &Event{
		Type:      eventType,
		AccountID: accountID,
		Timestamp: time.Now().UTC(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		event.Payload = data
	}

	return event, nil
}

type RunStartedPayload struct {
	RunID   string `json:"run_id"`
	Trigger string `json:"trigger"`
	Date    string `json:"date"`
}

type VideoRecordedPayload struct {
	RunID      string   `json:"run_id"`
	VideoID    string   `json:"video_id"`
	Title      string   `json:"title"`
	TotalViews int64    `json:"total_views"`
	Playlists  []string `json:"playlists"`
}

type VideoFailedPayload struct {
	RunID   string `json:"run_id"`
	VideoID string `json:"video_id"`
	Reason  string `json:"reason"`
}

type AccountFailedPayload struct {
	RunID  string `json:"run_id"`
	Reason string `json:"reason"`
}

type RunFinishedPayload struct {
	RunID          string `json:"run_id"`
	Recorded       int    `json:"recorded"`
	NotFound       int    `json:"not_found"`
	Failed         int    `json:"failed"`
	FailedAccounts int    `json:"failed_accounts"`
	DurationMS     int64  `json:"duration_ms"`
}

type ConnectedPayload struct {
	ClientID string `json:"client_id"`
}

type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

// Hub fans events out to the websocket clients of each account.
type Hub struct {
	accounts   map[string]map[string]*Client
	sequences  map[string]uint64
	ipConns    map[string]int
	Register   chan *Client
	Unregister chan *Client
	publish    chan *Event
	shutdown   chan struct{}
	done       chan struct{}
	running    bool
	mu         sync.RWMutex
}

// Client is one dashboard connection.
type Client struct {
	ID        string
	AccountID string
	IPAddress string
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	closed    bool
	mu        sync.RWMutex
}
