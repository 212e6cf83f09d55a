package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"sokoni/config"
	"sokoni/internal/auth"
	"sokoni/internal/models"
	"sokoni/internal/repository"
	"sokoni/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// UpgradeChatWS upgrades to WebSocket for one conversation; query: token,
// conversation_id. The user must be the buyer or seller of that conversation.
func UpgradeChatWS(cfg *config.JWTConfig, chatHub *ws.ChatHub, chatRepo *repository.ChatRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		convIDStr := c.Query("conversation_id")
		if token == "" || convIDStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token and conversation_id required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		convID64, err := strconv.ParseUint(convIDStr, 10, 64)
		if err != nil || convID64 == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation_id"})
			return
		}
		conv, err := chatRepo.GetConversation(uint(convID64))
		if err != nil || conv == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		if claims.UserID != conv.BuyerID && claims.UserID != conv.SellerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not part of this conversation"})
			return
		}
		conn, err := chatUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := &ws.Client{
			UserID: claims.UserID,
			Role:   claims.Role,
			Send:   make(chan []byte, 256),
		}
		room := chatHub.GetOrCreateRoom(conv.ID, conv.BuyerID, conv.SellerID)
		room.Join(client)
		defer func() {
			room.Leave(client)
			client.Close()
		}()

		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		go func() {
			ticker := time.NewTicker(wsPingPeriod)
			defer ticker.Stop()
			for {
				select {
				case msg, ok := <-client.Send:
					if !ok {
						return
					}
					conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
					if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				case <-ticker.C:
					conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var msg struct {
				Type     string `json:"type"`
				Body     string `json:"body"`
				MediaURL string `json:"media_url"`
			}
			if json.Unmarshal(raw, &msg) != nil || msg.Type != "message" {
				continue
			}
			m := &models.Message{
				ConversationID: conv.ID,
				SenderID:       claims.UserID,
				Body:           msg.Body,
				MediaURL:       msg.MediaURL,
			}
			if err := chatRepo.CreateMessage(m); err != nil {
				continue
			}
			room.Broadcast(client, map[string]interface{}{
				"type":       "message",
				"id":         m.ID,
				"sender_id":  m.SenderID,
				"body":       m.Body,
				"media_url":  m.MediaURL,
				"created_at": m.CreatedAt,
			})
		}
	}
}
