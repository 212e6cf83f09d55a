package ws

import (
	"encoding/json"
	"sync"
)

// ChatRoom is one room per conversation (buyer + seller).
type ChatRoom struct {
	ConversationID uint
	BuyerID        uint
	SellerID       uint
	clients        map[*Client]struct{}
	mu             sync.RWMutex
}

func NewChatRoom(conversationID, buyerID, sellerID uint) *ChatRoom {
	return &ChatRoom{
		ConversationID: conversationID,
		BuyerID:        buyerID,
		SellerID:       sellerID,
		clients:        make(map[*Client]struct{}),
	}
}

func (r *ChatRoom) Join(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
}

func (r *ChatRoom) Leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
}

func (r *ChatRoom) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *ChatRoom) Broadcast(from *Client, payload interface{}) {
	data, _ := json.Marshal(payload)
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		if c != from {
			clients = append(clients, c)
		}
	}
	r.mu.RUnlock()
	for _, c := range clients {
		c.trySend(data)
	}
}

// ChatHub holds all chat rooms by conversation ID.
type ChatHub struct {
	mu    sync.RWMutex
	rooms map[uint]*ChatRoom
}

func NewChatHub() *ChatHub {
	return &ChatHub{rooms: make(map[uint]*ChatRoom)}
}

func (h *ChatHub) GetOrCreateRoom(conversationID, buyerID, sellerID uint) *ChatRoom {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[conversationID]; ok {
		return r
	}
	r := NewChatRoom(conversationID, buyerID, sellerID)
	h.rooms[conversationID] = r
	return r
}

func (h *ChatHub) GetRoom(conversationID uint) *ChatRoom {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[conversationID]
}

func (h *ChatHub) RemoveRoom(conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, conversationID)
}
