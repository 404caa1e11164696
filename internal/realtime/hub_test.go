package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dial connects a websocket client whose server side is attached to the hub.
func dial(t *testing.T, hub *Hub, audience Audience) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Attach(audience, conn)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.Eventually(t, func() bool {
		return hub.SubscriberCount(audience) > 0
	}, time.Second, 5*time.Millisecond)

	return client
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHubDeliversToSubscriber(t *testing.T) {
	hub := NewHub(Config{})
	client := dial(t, hub, Organization("org-1"))

	hub.Publish(Organization("org-1"), EventStatusUpdate, map[string]string{"service_id": "svc-1"})

	msg := readMessage(t, client)
	assert.Equal(t, EventStatusUpdate, msg.Event)

	payload, ok := msg.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "svc-1", payload["service_id"])
}

func TestHubAudienceIsolation(t *testing.T) {
	hub := NewHub(Config{})
	client := dial(t, hub, Organization("org-1"))

	// Events for other audiences never reach this subscriber, including the
	// public channel of the same organization.
	hub.Publish(Organization("org-2"), EventIncidentCreated, nil)
	hub.Publish(Public("acme.io"), EventIncidentCreated, nil)
	hub.Publish(Organization("org-1"), EventIncidentUpdated, nil)

	msg := readMessage(t, client)
	assert.Equal(t, EventIncidentUpdated, msg.Event)
}

func TestHubPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub(Config{})

	// Fire-and-forget: publishing into an empty room is a no-op.
	hub.Publish(Organization("org-1"), EventIncidentCreated, map[string]string{"id": "inc-1"})
	assert.Equal(t, 0, hub.SubscriberCount(Organization("org-1")))
}

func TestHubDetachOnClose(t *testing.T) {
	hub := NewHub(Config{})
	client := dial(t, hub, Organization("org-1"))

	require.NoError(t, client.Close())

	require.Eventually(t, func() bool {
		return hub.SubscriberCount(Organization("org-1")) == 0
	}, time.Second, 5*time.Millisecond)

	// Publishing after detach must not panic or block.
	hub.Publish(Organization("org-1"), EventIncidentCreated, nil)
}

func TestHubOrderPreservedPerSubscriber(t *testing.T) {
	hub := NewHub(Config{})
	client := dial(t, hub, Public("acme.io"))

	hub.Publish(Public("acme.io"), EventStatusUpdate, map[string]string{"seq": "1"})
	hub.Publish(Public("acme.io"), EventStatusUpdate, map[string]string{"seq": "2"})
	hub.Publish(Public("acme.io"), EventIncidentCreated, map[string]string{"seq": "3"})

	for _, want := range []string{"1", "2", "3"} {
		msg := readMessage(t, client)
		payload, ok := msg.Payload.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, want, payload["seq"])
	}
}
