package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient captures sent payloads so tests can assert delivery.
type mockClient struct {
	id          string
	workspaceID int32

	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func newMockClient(id string, workspaceID int32) *mockClient {
	return &mockClient{id: id, workspaceID: workspaceID}
}

func (m *mockClient) ID() string         { return m.id }
func (m *mockClient) WorkspaceID() int32 { return m.workspaceID }

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) Messages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.messages))
	copy(out, m.messages)
	return out
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client1 := newMockClient("client-1", 1)
	client2 := newMockClient("client-2", 1)
	client3 := newMockClient("client-3", 2)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(1))
	assert.Equal(t, 1, hub.ClientCount(2))
	assert.Equal(t, 0, hub.ClientCount(999))

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(1))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount(1))
	assert.Equal(t, 0, hub.ClientCount(2))
}

func TestHub_Broadcast_WorkspaceIsolation(t *testing.T) {
	hub := NewHub()

	client1a := newMockClient("client-1a", 1)
	client1b := newMockClient("client-1b", 1)
	client2 := newMockClient("client-2", 2)

	hub.Register(client1a)
	hub.Register(client1b)
	hub.Register(client2)

	hub.Broadcast(1, TransactionCreated(map[string]interface{}{"id": float64(42)}))

	assert.Len(t, client1a.Messages(), 1)
	assert.Len(t, client1b.Messages(), 1)
	assert.Empty(t, client2.Messages(), "workspace 2 must not see workspace 1 events")
}

func TestHub_Broadcast_FanOut(t *testing.T) {
	hub := NewHub()

	clients := make([]*mockClient, 5)
	for i := range clients {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), 1)
		hub.Register(clients[i])
	}

	hub.Broadcast(1, ReceiptCreated(map[string]interface{}{"id": float64(1)}))

	for i, c := range clients {
		assert.Len(t, c.Messages(), 1, "client %d should receive the event", i)
	}
}

func TestHub_Broadcast_SkipsClosedClient(t *testing.T) {
	hub := NewHub()

	open := newMockClient("open", 1)
	closed := newMockClient("closed", 1)
	closed.Close()

	hub.Register(open)
	hub.Register(closed)

	require.NotPanics(t, func() {
		hub.Broadcast(1, RuleCreated(map[string]interface{}{"id": float64(7)}))
	})

	assert.Len(t, open.Messages(), 1)
	assert.Empty(t, closed.Messages())
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	const clientCount = 50
	clients := make([]*mockClient, clientCount)
	for i := range clients {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), int32(i%5))
	}

	var wg sync.WaitGroup
	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}
	wg.Wait()

	total := 0
	for ws := int32(0); ws < 5; ws++ {
		total += hub.ClientCount(ws)
	}
	assert.Equal(t, clientCount, total)

	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			hub.Broadcast(int32(idx%5), TransactionCreated(map[string]interface{}{"id": float64(idx)}))
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}
	wg.Wait()

	for ws := int32(0); ws < 5; ws++ {
		assert.Equal(t, 0, hub.ClientCount(ws))
	}
}

func TestHub_UnregisterUnknownClient(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Unregister(newMockClient("never-registered", 1))
	})
}

func TestHub_BroadcastToEmptyWorkspace(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Broadcast(999, ReportGenerated(map[string]interface{}{"taxPeriod": "2024Q2"}))
	})
}
