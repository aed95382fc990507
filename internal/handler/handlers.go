package handler

import (
	"github.com/redis/go-redis/v9"

	"ephemeral_chat/internal/config"
	"ephemeral_chat/internal/events"
	"ephemeral_chat/internal/service"
	"ephemeral_chat/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Room      *RoomHandler
	Chat      *ChatHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, channel events.Channel, rdb *redis.Client, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(rdb),
		Room:      NewRoomHandler(services.Room, log),
		Chat:      NewChatHandler(services.Chat, cfg.Room, log),
		WebSocket: NewWebSocketHandler(channel, log),
	}
}
