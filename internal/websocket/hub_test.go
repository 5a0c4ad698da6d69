package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvaudit/internal/infrastructure"
	"csvaudit/internal/inspect"
	"csvaudit/internal/shared/testutil"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func newFakeClient(hub *Hub, id string, buffer int) *Client {
	return &Client{
		hub:         hub,
		send:        make(chan []byte, buffer),
		id:          id,
		traceID:     "trace-" + id,
		connectedAt: time.Now(),
	}
}

func receive(t *testing.T, ch <-chan []byte) Message {
	t.Helper()
	select {
	case data, ok := <-ch:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
		return Message{}
	}
}

func TestHub_StartStopIdempotent(t *testing.T) {
	hub := NewHub(nil)

	hub.Start()
	hub.Start()
	assert.True(t, hub.running)

	hub.Stop()
	hub.Stop()
	assert.False(t, hub.running)
}

func TestHub_RegisterSendsConnectionMessage(t *testing.T) {
	hub := newTestHub(t)
	client := newFakeClient(hub, "c1", 4)

	require.True(t, hub.Register(client))

	msg := receive(t, client.send)
	assert.Equal(t, TypeConnection, msg.Type)
	assert.Equal(t, "trace-c1", msg.TraceID)
	data := msg.Data.(map[string]interface{})
	assert.Equal(t, "connected", data["status"])
	assert.Equal(t, "c1", data["client_id"])
	assert.Equal(t, 1, hub.ClientCount())

	hub.unregisterClient(client)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_ReportProgressReachesEveryClient(t *testing.T) {
	hub := newTestHub(t)
	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = newFakeClient(hub, fmt.Sprintf("c%d", i), 4)
		require.True(t, hub.Register(clients[i]))
		receive(t, clients[i].send)
	}

	ctx := infrastructure.WithTraceID(context.Background(), "req-1")
	hub.ReportProgress(ctx, inspect.ProgressEvent{
		RunID: "run-1", Stage: inspect.StageFile, File: "a.csv", Completed: 1, Total: 2,
	})

	for _, c := range clients {
		msg := receive(t, c.send)
		assert.Equal(t, TypeProgress, msg.Type)
		assert.Equal(t, "req-1", msg.TraceID)
		data := msg.Data.(map[string]interface{})
		assert.Equal(t, "run-1", data["run_id"])
		assert.Equal(t, "a.csv", data["file"])
		assert.EqualValues(t, 2, data["total"])
	}
	assert.Eventually(t, func() bool { return hub.Stats()["messages_sent"] == 3 }, time.Second, 10*time.Millisecond)
}

func TestHub_SlowClientIsDisconnected(t *testing.T) {
	hub := newTestHub(t)
	slow := newFakeClient(hub, "slow", 1)
	require.True(t, hub.Register(slow))

	// The connection message fills the buffer.
	hub.Broadcast(context.Background(), TypeProgress, "one")

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	<-slow.send
	_, ok := <-slow.send
	assert.False(t, ok)
}

func TestHub_BroadcastWithoutLoopDropsWhenFull(t *testing.T) {
	hub := NewHub(nil)

	for i := 0; i < broadcastBuffer+5; i++ {
		hub.Broadcast(context.Background(), TypeProgress, i)
	}

	assert.Equal(t, int64(5), hub.Stats()["messages_dropped"])
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	client := newFakeClient(hub, "c1", 4)
	require.True(t, hub.Register(client))
	<-client.send

	hub.Stop()

	_, ok := <-client.send
	assert.False(t, ok)
	assert.False(t, hub.Register(newFakeClient(hub, "late", 1)))
}

func TestServeWS_StreamsProgress(t *testing.T) {
	hub := newTestHub(t)
	logger, handler := testutil.NewTestLogger(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r, logger)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello Message
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, TypeConnection, hello.Type)

	hub.ReportProgress(context.Background(), inspect.ProgressEvent{RunID: "r", Stage: inspect.StageCompleted, Completed: 1, Total: 1})

	var progress Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&progress))
	assert.Equal(t, TypeProgress, progress.Type)
	assert.Equal(t, inspect.StageCompleted, progress.Data.(map[string]interface{})["stage"])

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	testutil.AssertNoErrors(t, handler)
}

func TestServeWS_RejectsPlainHTTP(t *testing.T) {
	hub := newTestHub(t)
	rec := httptest.NewRecorder()

	ServeWS(hub, rec, httptest.NewRequest(http.MethodGet, "/ws", nil), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, hub.ClientCount())
}
