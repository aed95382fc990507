package service

import (
	"ephemeral_chat/internal/config"
	"ephemeral_chat/internal/events"
	"ephemeral_chat/internal/repository"
	"ephemeral_chat/pkg/logger"
)

type Services struct {
	Auth      AuthService
	Room      RoomService
	Chat      ChatService
	RateLimit RateLimitService
}

func NewServices(repos *repository.Repositories, channel events.Channel, cfg *config.Config, log logger.Logger) (*Services, error) {
	auth := NewAuthService(cfg.JWT, cfg.Room, log)

	room, err := NewRoomService(repos.Room, repos.Message, channel, auth, cfg.Room, log)
	if err != nil {
		return nil, err
	}

	return &Services{
		Auth:      auth,
		Room:      room,
		Chat:      NewChatService(repos.Room, repos.Message, channel, log),
		RateLimit: NewRateLimitService(repos.RateLimit, log),
	}, nil
}
