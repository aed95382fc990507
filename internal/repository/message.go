package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ephemeral_chat/internal/domain"
	"ephemeral_chat/pkg/logger"
)

type MessageRepository interface {
	// Добавить сообщение в конец лога комнаты
	Append(ctx context.Context, roomID string, message *domain.Message) error

	// Все сообщения комнаты в порядке добавления
	List(ctx context.Context, roomID string) ([]*domain.Message, error)

	// Пересинхронизировать TTL лога с TTL метаданных комнаты.
	// Если лог уже истек, запись TTL ничего не делает - это допустимо
	ExpireIn(ctx context.Context, roomID string, ttl time.Duration) error

	// Удалить лог целиком. Идемпотентно
	Delete(ctx context.Context, roomID string) error
}

type messageRepository struct {
	rdb *redis.Client
	log logger.Logger
}

func NewMessageRepository(rdb *redis.Client, log logger.Logger) MessageRepository {
	return &messageRepository{
		rdb: rdb,
		log: log,
	}
}

func (r *messageRepository) messagesKey(roomID string) string {
	return fmt.Sprintf(RoomMessagesKeyPrefix, roomID)
}

func (r *messageRepository) Append(ctx context.Context, roomID string, message *domain.Message) error {
	messageJSON, err := json.Marshal(message)
	if err != nil {
		r.log.Error("Failed to marshal message", "error", err)
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := r.rdb.RPush(ctx, r.messagesKey(roomID), messageJSON).Err(); err != nil {
		r.log.Error("Failed to append message", "error", err, "room_id", roomID)
		return fmt.Errorf("failed to append message: %w", err)
	}

	return nil
}

func (r *messageRepository) List(ctx context.Context, roomID string) ([]*domain.Message, error) {
	messagesJSON, err := r.rdb.LRange(ctx, r.messagesKey(roomID), 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []*domain.Message{}, nil
		}
		r.log.Error("Failed to get messages", "error", err, "room_id", roomID)
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	messages := make([]*domain.Message, 0, len(messagesJSON))
	for _, msgJSON := range messagesJSON {
		var message domain.Message
		if err := json.Unmarshal([]byte(msgJSON), &message); err != nil {
			r.log.Warn("Failed to unmarshal message", "error", err, "room_id", roomID)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *messageRepository) ExpireIn(ctx context.Context, roomID string, ttl time.Duration) error {
	if err := r.rdb.Expire(ctx, r.messagesKey(roomID), ttl).Err(); err != nil {
		r.log.Error("Failed to set messages TTL", "error", err, "room_id", roomID)
		return err
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, roomID string) error {
	if err := r.rdb.Del(ctx, r.messagesKey(roomID)).Err(); err != nil {
		r.log.Error("Failed to delete messages", "error", err, "room_id", roomID)
		return err
	}
	return nil
}
