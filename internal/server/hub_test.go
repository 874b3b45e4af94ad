package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"pollstream/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func addClient(t *testing.T, hub *Hub) *Client {
	t.Helper()
	client := NewClient(hub, nil, uuid.New())
	hub.register <- client
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return hub.clients[client]
	}, time.Second, 5*time.Millisecond)
	return client
}

func TestHubBroadcastFanOut(t *testing.T) {
	hub := startHub(t)
	first := addClient(t, hub)
	second := addClient(t, hub)

	env := events.NewEnvelope(events.EventTypePollCreated, uuid.NewString(), map[string]string{"title": "hello"})
	hub.Broadcast(env)

	for _, client := range []*Client{first, second} {
		select {
		case data := <-client.send:
			var got events.Envelope
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, events.EventTypePollCreated, got.EventType)
			assert.Equal(t, env.AggregateID, got.AggregateID)
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestHubUnregister(t *testing.T) {
	hub := startHub(t)
	client := addClient(t, hub)
	require.Equal(t, 1, hub.ClientCount())

	hub.unregister <- client
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	// The send channel is closed on unregister.
	_, open := <-client.send
	assert.False(t, open)
}

func TestHubEvictsSlowSubscriber(t *testing.T) {
	hub := startHub(t)
	slow := addClient(t, hub)
	healthy := addClient(t, hub)

	// Fill the slow subscriber's buffer; it never drains.
	for i := 0; i < cap(slow.send); i++ {
		slow.send <- []byte("backlog")
	}

	hub.BroadcastRaw([]byte(`{"event_type":"poll.updated"}`))

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	// The healthy subscriber still got the message.
	select {
	case data := <-healthy.send:
		assert.Contains(t, string(data), "poll.updated")
	case <-time.After(time.Second):
		t.Fatal("healthy client did not receive broadcast")
	}
}

func TestHubEvictionKeepsSendChannelOpen(t *testing.T) {
	hub := startHub(t)
	slow := addClient(t, hub)
	healthy := addClient(t, hub)

	for i := 0; i < cap(slow.send); i++ {
		slow.send <- []byte("backlog")
	}

	// Race the eviction with the read side's pong replies. If eviction closed
	// the send channel while the reader is alive, one of these sends would
	// panic and take the process down.
	replies := make(chan struct{})
	go func() {
		defer close(replies)
		for i := 0; i < 200; i++ {
			select {
			case slow.send <- []byte(`{"type":"pong","data":"connected"}`):
			default:
			}
		}
	}()

	hub.BroadcastRaw([]byte(`{"event_type":"poll.updated"}`))

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)
	<-replies

	// The evicted client's channel stays open until its reader unregisters;
	// the backlog is still readable.
	select {
	case data, open := <-slow.send:
		require.True(t, open)
		assert.Equal(t, "backlog", string(data))
	default:
		t.Fatal("expected buffered data on the evicted client's channel")
	}

	select {
	case <-healthy.send:
	case <-time.After(time.Second):
		t.Fatal("healthy client did not receive broadcast")
	}
}

func TestHubStopIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	hub.Stop()
	assert.NotPanics(t, hub.Stop)
}

func TestHubConcurrentBroadcast(t *testing.T) {
	hub := startHub(t)

	clients := make([]*Client, 4)
	for i := range clients {
		clients[i] = addClient(t, hub)
	}

	// Drain every client so nobody fills up and gets evicted.
	var drained sync.WaitGroup
	stop := make(chan struct{})
	for _, client := range clients {
		drained.Add(1)
		go func(c *Client) {
			defer drained.Done()
			for {
				select {
				case <-c.send:
				case <-stop:
					return
				}
			}
		}(client)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.BroadcastRaw([]byte(fmt.Sprintf(`{"n":%d,"j":%d}`, n, j)))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, hub.ClientCount())
	close(stop)
	drained.Wait()
}
