package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockClient(hub *Hub, id, accountID string) *Client {
	return &Client{
		ID:        id,
		AccountID: accountID,
		IPAddress: "127.0.0.1",
		hub:       hub,
		send:      make(chan []byte, sendBufferSize),
	}
}

func receive(t *testing.T, client *Client) Event {
	t.Helper()

	select {
	case data := <-client.send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	return Event{}
}

func TestHub_RegisterSendsConnected(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	client := newMockClient(hub, "c1", "acc")
	hub.Register <- client

	event := receive(t, client)
	assert.Equal(t, TypeConnected, event.Type)
	assert.Eventually(t, func() bool { return hub.ClientCount("acc") == 1 }, time.Second, 10*time.Millisecond)
}

func TestHub_PublishOnlyReachesAccount(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	mine := newMockClient(hub, "c1", "acc")
	other := newMockClient(hub, "c2", "other")

	hub.Register <- mine
	hub.Register <- other
	receive(t, mine)
	receive(t, other)

	event, err := NewEvent(TypeRunStarted, "acc", RunStartedPayload{RunID: "r1", Trigger: "manual"})
	require.NoError(t, err)
	hub.Publish(event)

	got := receive(t, mine)
	assert.Equal(t, TypeRunStarted, got.Type)
	assert.Equal(t, uint64(1), got.Sequence)

	var payload RunStartedPayload
	require.NoError(t, json.Unmarshal(got.Payload, &payload))
	assert.Equal(t, "r1", payload.RunID)

	select {
	case <-other.send:
		t.Fatal("event leaked to another account")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SequenceIncreases(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	client := newMockClient(hub, "c1", "acc")
	hub.Register <- client
	receive(t, client)

	for i := 0; i < 3; i++ {
		event, err := NewEvent(TypeVideoRecorded, "acc", VideoRecordedPayload{VideoID: "v"})
		require.NoError(t, err)
		hub.Publish(event)
	}

	for i := uint64(1); i <= 3; i++ {
		assert.Equal(t, i, receive(t, client).Sequence)
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	client := newMockClient(hub, "c1", "acc")
	hub.Register <- client
	receive(t, client)

	hub.Unregister <- client

	assert.Eventually(t, func() bool { return hub.ClientCount("acc") == 0 }, time.Second, 10*time.Millisecond)
	assert.True(t, client.IsClosed())
}

func TestHub_ConnectionLimits(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	for i := 0; i < maxConnectionsPerAccount; i++ {
		client := newMockClient(hub, GenerateClientID(), "acc")
		client.IPAddress = ""
		hub.Register <- client
	}

	assert.Eventually(t, func() bool {
		ok, _ := hub.CanAcceptConnection("acc", "10.0.0.1")
		return !ok
	}, time.Second, 10*time.Millisecond)

	ok, _ := hub.CanAcceptConnection("someone-else", "10.0.0.1")
	assert.True(t, ok)
}

func TestClient_SendAfterClose(t *testing.T) {
	client := newMockClient(nil, "c1", "acc")
	client.Close()

	event, err := NewEvent(TypeRunFinished, "acc", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, client.Send(event), ErrConnectionClosed)
}

func TestCheckOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	req.Header.Set("Origin", "https://evil.example.com")

	t.Setenv("ENVIRONMENT", "development")
	assert.True(t, CheckOrigin(req))

	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://tt.example.com")
	assert.False(t, CheckOrigin(req))

	req.Header.Set("Origin", "https://tt.example.com")
	assert.True(t, CheckOrigin(req))
}
