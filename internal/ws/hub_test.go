package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastToUser(t *testing.T) {
	h := NewHub()
	c := &Client{UserID: 1, Send: make(chan []byte, 4)}
	other := &Client{UserID: 2, Send: make(chan []byte, 4)}
	h.Register(c)
	h.Register(other)

	h.BroadcastToUser(1, map[string]string{"status": "COMPLETED"})

	select {
	case msg := <-c.Send:
		assert.Contains(t, string(msg), "COMPLETED")
	default:
		t.Fatal("expected a message for user 1")
	}
	assert.Empty(t, other.Send)
}

func TestHubCloseUnregisters(t *testing.T) {
	h := NewHub()
	c := &Client{UserID: 1, Send: make(chan []byte, 1)}
	h.Register(c)
	require.Equal(t, 1, h.ClientCount())

	c.Close()
	c.Close() // second close is a no-op

	assert.Equal(t, 0, h.ClientCount())
	assert.False(t, c.trySend([]byte("x")))
}

func TestHubBroadcastDuringCloseDoesNotPanic(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					h.BroadcastToUser(1, "x")
					h.BroadcastAll("y")
				}
			}
		}()
	}

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		c := &Client{UserID: 1, Send: make(chan []byte, 1)}
		h.Register(c)
		c.Close()
	}
	close(done)
	wg.Wait()

	assert.Equal(t, 0, h.ClientCount())
}

func TestChatRoomBroadcastSkipsSender(t *testing.T) {
	room := NewChatRoom(7, 1, 2)
	sender := &Client{UserID: 1, Send: make(chan []byte, 1)}
	peer := &Client{UserID: 2, Send: make(chan []byte, 1)}
	room.Join(sender)
	room.Join(peer)

	room.Broadcast(sender, map[string]string{"body": "hello"})

	assert.Empty(t, sender.Send)
	select {
	case msg := <-peer.Send:
		assert.Contains(t, string(msg), "hello")
	default:
		t.Fatal("expected the peer to receive the message")
	}

	peer.Close()
	room.Leave(peer)
	room.Broadcast(sender, "again") // closed peer must not panic
	assert.Equal(t, 1, room.ClientCount())
}
