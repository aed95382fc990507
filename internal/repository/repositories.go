package repository

import (
	"github.com/redis/go-redis/v9"

	"ephemeral_chat/pkg/logger"
)

type Repositories struct {
	Room      RoomRepository
	Message   MessageRepository
	RateLimit RateLimitRepository
}

func NewRepositories(rdb *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		Room:      NewRoomRepository(rdb, log),
		Message:   NewMessageRepository(rdb, log),
		RateLimit: NewRateLimitRepository(rdb, log),
	}
}
