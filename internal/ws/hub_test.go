package ws

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	userID   uuid.UUID
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string, userID uuid.UUID) *mockClient {
	return &mockClient{
		id:       id,
		userID:   userID,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) UserID() uuid.UUID {
	return m.userID
}

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

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.messages))
	copy(out, m.messages)
	return out
}

func waitForMessages(t *testing.T, client *mockClient, count int) [][]byte {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		messages := client.GetMessages()
		if len(messages) >= count {
			return messages
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d messages", count)
	return nil
}

func TestHub_RegisterAndCount(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	hub.Register(newMockClient("c1", userID))
	hub.Register(newMockClient("c2", userID))
	hub.Register(newMockClient("c3", uuid.New()))

	assert.Equal(t, 2, hub.ClientCount(userID))
	assert.Equal(t, 3, hub.TotalClientCount())
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	client := newMockClient("c1", userID)
	hub.Register(client)
	require.Equal(t, 1, hub.ClientCount(userID))

	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount(userID))
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_BroadcastReachesOnlyTheUser(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	otherID := uuid.New()

	mine := newMockClient("mine", userID)
	other := newMockClient("other", otherID)
	hub.Register(mine)
	hub.Register(other)

	hub.Broadcast(userID, OperationCreated(map[string]int32{"id": 1}))

	messages := waitForMessages(t, mine, 1)
	require.Len(t, messages, 1)

	var event Event
	require.NoError(t, json.Unmarshal(messages[0], &event))
	assert.Equal(t, "operation.created", event.Type)
	assert.Equal(t, EntityTypeOperation, event.Entity)

	assert.Empty(t, other.GetMessages(), "other user's client must not receive the event")
}

func TestHub_BroadcastFanOut(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	first := newMockClient("first", userID)
	second := newMockClient("second", userID)
	hub.Register(first)
	hub.Register(second)

	hub.Broadcast(userID, AccountUpdated(map[string]int32{"id": 7}))

	waitForMessages(t, first, 1)
	waitForMessages(t, second, 1)
}

func TestHub_BroadcastToUnknownUser(t *testing.T) {
	hub := NewHub()

	// Must not panic or block
	hub.Broadcast(uuid.New(), CategoryDeleted(map[string]int32{"id": 3}))
}

func TestHub_Publish(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	client := newMockClient("c1", userID)
	hub.Register(client)

	// Publish is the EventPublisher entry point used by services
	hub.Publish(userID, CategoryUpdated(map[string]int32{"id": 2}))

	messages := waitForMessages(t, client, 1)
	var event Event
	require.NoError(t, json.Unmarshal(messages[0], &event))
	assert.Equal(t, "category.updated", event.Type)
}
