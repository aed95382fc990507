package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ephemeral_chat/internal/domain"
	"ephemeral_chat/pkg/logger"
)

// Префиксы ключей Redis. Метаданные и лог сообщений комнаты
// живут под отдельными ключами, но всегда с одинаковым TTL.
const (
	RoomMetaKeyPrefix     = "room:%s:meta"
	RoomMessagesKeyPrefix = "room:%s:messages"
)

type RoomRepository interface {
	// Создать метаданные комнаты и выставить TTL ключа
	Create(ctx context.Context, room *domain.Room, ttl time.Duration) error

	// Проверить, что комната существует и не истекла
	Exists(ctx context.Context, roomID string) (bool, error)

	// Оставшееся время жизни. Для несуществующей или истекшей
	// комнаты возвращает 0, а не ошибку
	RemainingTTL(ctx context.Context, roomID string) (time.Duration, error)

	// Удалить метаданные. Идемпотентно
	Delete(ctx context.Context, roomID string) error
}

type roomRepository struct {
	rdb *redis.Client
	log logger.Logger
}

func NewRoomRepository(rdb *redis.Client, log logger.Logger) RoomRepository {
	return &roomRepository{
		rdb: rdb,
		log: log,
	}
}

func (r *roomRepository) metaKey(roomID string) string {
	return fmt.Sprintf(RoomMetaKeyPrefix, roomID)
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room, ttl time.Duration) error {
	key := r.metaKey(room.ID)

	err := r.rdb.HSet(ctx, key, "created_at", room.CreatedAt.UnixMilli()).Err()
	if err != nil {
		r.log.Error("Failed to create room metadata", "error", err, "room_id", room.ID)
		return fmt.Errorf("failed to create room metadata: %w", err)
	}

	if err := r.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		r.log.Error("Failed to set room TTL", "error", err, "room_id", room.ID)
		return fmt.Errorf("failed to set room TTL: %w", err)
	}

	return nil
}

func (r *roomRepository) Exists(ctx context.Context, roomID string) (bool, error) {
	exists, err := r.rdb.Exists(ctx, r.metaKey(roomID)).Result()
	if err != nil {
		r.log.Error("Failed to check room existence", "error", err, "room_id", roomID)
		return false, err
	}
	return exists > 0, nil
}

func (r *roomRepository) RemainingTTL(ctx context.Context, roomID string) (time.Duration, error) {
	ttl, err := r.rdb.TTL(ctx, r.metaKey(roomID)).Result()
	if err != nil {
		r.log.Error("Failed to get room TTL", "error", err, "room_id", roomID)
		return 0, err
	}

	// Redis возвращает отрицательный TTL для отсутствующего ключа
	// или ключа без срока жизни; наружу это всегда ноль
	if ttl < 0 {
		return 0, nil
	}

	return ttl, nil
}

func (r *roomRepository) Delete(ctx context.Context, roomID string) error {
	if err := r.rdb.Del(ctx, r.metaKey(roomID)).Err(); err != nil {
		r.log.Error("Failed to delete room metadata", "error", err, "room_id", roomID)
		return err
	}
	return nil
}
