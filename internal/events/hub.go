package events

import (
	"time"

	"codeberg.org/tubetrack/server/internal/logger"
)

func NewHub() *Hub {
	return &Hub{
		accounts:   make(map[string]map[string]*Client),
		sequences:  make(map[string]uint64),
		ipConns:    make(map[string]int),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		publish:    make(chan *Event, 256),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// starts the hub's main loop
func (h *Hub) Run() {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	defer close(h.done)

	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.publish:
			h.broadcast(event)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// queues an event for every client of accountID. never blocks: when the
// queue is full the event is dropped.
func (h *Hub) Publish(event *Event) {
	select {
	case h.publish <- event:
	default:
		logger.Warn("event queue full, dropping event",
			"type", event.Type,
			"account_id", event.AccountID,
		)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.accounts[client.AccountID] == nil {
		h.accounts[client.AccountID] = make(map[string]*Client)
	}

	h.accounts[client.AccountID][client.ID] = client

	if client.IPAddress != "" {
		h.ipConns[client.IPAddress]++
	}

	logger.Info("client registered",
		"client_id", client.ID,
		"account_id", client.AccountID,
	)

	connected, err := NewEvent(TypeConnected, client.AccountID, ConnectedPayload{ClientID: client.ID})
	if err == nil {
		if sendErr := client.Send(connected); sendErr != nil {
			logger.ErrorErr(sendErr, "failed to send connected event", "client_id", client.ID)
		}
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, exists := h.accounts[client.AccountID]
	if !exists {
		return
	}

	if _, exists := clients[client.ID]; !exists {
		return
	}

	delete(clients, client.ID)
	client.Close()

	if client.IPAddress != "" {
		h.ipConns[client.IPAddress]--

		if h.ipConns[client.IPAddress] <= 0 {
			delete(h.ipConns, client.IPAddress)
		}
	}

	if len(clients) == 0 {
		delete(h.accounts, client.AccountID)
		delete(h.sequences, client.AccountID)
	}

	logger.Info("client unregistered",
		"client_id", client.ID,
		"account_id", client.AccountID,
	)
}

func (h *Hub) broadcast(event *Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, exists := h.accounts[event.AccountID]
	if !exists {
		return
	}

	h.sequences[event.AccountID]++
	event.Sequence = h.sequences[event.AccountID]

	for clientID, client := range clients {
		if err := client.Send(event); err != nil {
			logger.ErrorErr(err, "failed to send event to client",
				"client_id", clientID,
				"account_id", event.AccountID,
				"type", event.Type,
			)
		}
	}
}

// number of connected clients of an account
func (h *Hub) ClientCount(accountID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.accounts[accountID])
}

// checks the per-account and per-IP connection limits
func (h *Hub) CanAcceptConnection(accountID, ipAddress string) (bool, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.accounts[accountID]) >= maxConnectionsPerAccount {
		return false, "maximum connections per account exceeded"
	}

	if h.ipConns[ipAddress] >= maxConnectionsPerIP {
		return false, "maximum connections per IP address exceeded"
	}

	return true, ""
}

// stops the hub and waits for connections to be closed
func (h *Hub) Shutdown() {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()

	if !running {
		return
	}

	close(h.shutdown)
	<-h.done
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()

	logger.Info("notifying clients of server shutdown")

	for accountID, clients := range h.accounts {
		event, err := NewEvent(TypeServerShutdown, accountID, ServerShutdownPayload{
			Reason: "server is shutting down",
		})
		if err != nil {
			continue
		}

		for _, client := range clients {
			if err := client.Send(event); err != nil {
				logger.Debug("failed to send shutdown notification", "client_id", client.ID, "error", err)
			}
		}
	}

	h.mu.Unlock()

	// give clients time to receive the shutdown message
	time.Sleep(200 * time.Millisecond)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.accounts {
		for _, client := range clients {
			client.Close()
		}
	}

	h.accounts = make(map[string]map[string]*Client)
	h.sequences = make(map[string]uint64)
	h.ipConns = make(map[string]int)
}
