package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"ephemeral_chat/pkg/logger"
)

// Канал событий комнаты. Redis Pub/Sub ничего не персистит,
// поэтому при уничтожении комнаты удалять здесь нечего -
// гарантия доставки только для подключенных в момент публикации.
const roomEventsChannelPrefix = "room:%s:events"

// Event - конверт события на проводе
type Event struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, roomID, event string, payload any) error
}

type Subscriber interface {
	// Подписка на события комнаты. Возвращенная функция
	// останавливает подписку и закрывает канал
	Subscribe(ctx context.Context, roomID string) (<-chan Event, func(), error)
}

type Channel interface {
	Publisher
	Subscriber
}

type redisChannel struct {
	rdb *redis.Client
	log logger.Logger
}

func NewRedisChannel(rdb *redis.Client, log logger.Logger) Channel {
	return &redisChannel{
		rdb: rdb,
		log: log,
	}
}

func (c *redisChannel) channelName(roomID string) string {
	return fmt.Sprintf(roomEventsChannelPrefix, roomID)
}

func (c *redisChannel) Publish(ctx context.Context, roomID, event string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		c.log.Error("Failed to marshal event payload", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	data, err := json.Marshal(Event{Event: event, Payload: payloadJSON})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := c.rdb.Publish(ctx, c.channelName(roomID), data).Err(); err != nil {
		c.log.Error("Failed to publish event", "error", err, "room_id", roomID, "event", event)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (c *redisChannel) Subscribe(ctx context.Context, roomID string) (<-chan Event, func(), error) {
	pubsub := c.rdb.Subscribe(ctx, c.channelName(roomID))

	// Дожидаемся подтверждения подписки, чтобы после возврата
	// из Subscribe публикации уже не терялись
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		c.log.Error("Failed to subscribe to room events", "error", err, "room_id", roomID)
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan Event, 16)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				c.log.Warn("Failed to unmarshal event", "error", err, "room_id", roomID)
				continue
			}
			// Потребитель мог уйти, не дочитав буфер; без done
			// горутина повиснет на отправке навсегда
			select {
			case out <- event:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}

	return out, cancel, nil
}
