package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ephemeral_chat/internal/domain"
	"ephemeral_chat/internal/events"
	"ephemeral_chat/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	channel events.Subscriber
	log     logger.Logger
}

func NewWebSocketHandler(channel events.Subscriber, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		channel: channel,
		log:     log,
	}
}

// HandleRoomEvents транслирует события комнаты в WebSocket.
// Доступ уже проверен auth middleware (токен в query параметре)
func (h *WebSocketHandler) HandleRoomEvents(c *gin.Context) {
	roomID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err, "room_id", roomID)
		return
	}
	defer conn.Close()

	eventsCh, cancel, err := h.channel.Subscribe(c.Request.Context(), roomID)
	if err != nil {
		h.log.Error("Failed to subscribe to room events", "error", err, "room_id", roomID)
		return
	}
	defer cancel()

	// Читатель нужен только чтобы заметить закрытие со стороны клиента
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.log.Warn("Failed to write event to socket", "error", err, "room_id", roomID)
				return
			}
			// После уведомления об уничтожении соединение больше не нужно
			if event.Event == domain.EventDestroy {
				return
			}
		}
	}
}
