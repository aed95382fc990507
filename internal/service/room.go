package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jaevor/go-nanoid"

	"ephemeral_chat/internal/config"
	"ephemeral_chat/internal/domain"
	"ephemeral_chat/internal/events"
	"ephemeral_chat/internal/repository"
	apperrors "ephemeral_chat/pkg/errors"
	"ephemeral_chat/pkg/logger"
)

const roomIDLength = 21

type CreateRoomResult struct {
	Room  *domain.Room
	Token string
}

type RoomService interface {
	// Создать комнату. TTL ограничивается конфигом,
	// при отсутствии применяется значение по умолчанию
	Create(ctx context.Context, ttlMinutes *int) (*CreateRoomResult, error)

	// Выдать токен доступа к существующей комнате
	Join(ctx context.Context, roomID string) (string, error)

	// Оставшееся время жизни. 0 для отсутствующей комнаты, без ошибки
	RemainingTTL(ctx context.Context, roomID string) (time.Duration, error)

	// Уничтожить комнату: сначала событие подписчикам, затем
	// безусловное удаление метаданных и лога. Идемпотентно
	Destroy(ctx context.Context, identity *domain.ScopedIdentity) error
}

type roomService struct {
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
	channel     events.Publisher
	authService AuthService
	cfg         config.RoomConfig
	log         logger.Logger
	newRoomID   func() string
}

func NewRoomService(
	roomRepo repository.RoomRepository,
	messageRepo repository.MessageRepository,
	channel events.Publisher,
	authService AuthService,
	cfg config.RoomConfig,
	log logger.Logger,
) (RoomService, error) {
	// nanoid: 21 символ URL-safe алфавита, как и у сообщений
	// достаточно энтропии, чтобы не проверять коллизии
	newRoomID, err := nanoid.Standard(roomIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to init room id generator: %w", err)
	}

	return &roomService{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		channel:     channel,
		authService: authService,
		cfg:         cfg,
		log:         log,
		newRoomID:   newRoomID,
	}, nil
}

// clampTTL приводит запрошенный TTL к допустимым границам
func (s *roomService) clampTTL(ttlMinutes *int) time.Duration {
	if ttlMinutes == nil {
		return s.cfg.DefaultTTL
	}

	ttl := time.Duration(*ttlMinutes) * time.Minute
	if ttl < s.cfg.MinTTL {
		return s.cfg.MinTTL
	}
	if ttl > s.cfg.MaxTTL {
		return s.cfg.MaxTTL
	}
	return ttl
}

func (s *roomService) Create(ctx context.Context, ttlMinutes *int) (*CreateRoomResult, error) {
	room := &domain.Room{
		ID:        s.newRoomID(),
		CreatedAt: time.Now(),
	}
	ttl := s.clampTTL(ttlMinutes)

	if err := s.roomRepo.Create(ctx, room, ttl); err != nil {
		return nil, err
	}

	// Лог сообщений создается лениво при первом сообщении,
	// событий не публикуем - у новой комнаты нет подписчиков
	token, err := s.authService.IssueToken(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("Room created", "room_id", room.ID, "ttl", ttl)

	return &CreateRoomResult{Room: room, Token: token}, nil
}

func (s *roomService) Join(ctx context.Context, roomID string) (string, error) {
	exists, err := s.roomRepo.Exists(ctx, roomID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", apperrors.ErrRoomNotFound
	}

	return s.authService.IssueToken(ctx, roomID)
}

func (s *roomService) RemainingTTL(ctx context.Context, roomID string) (time.Duration, error) {
	return s.roomRepo.RemainingTTL(ctx, roomID)
}

func (s *roomService) Destroy(ctx context.Context, identity *domain.ScopedIdentity) error {
	if identity == nil {
		return apperrors.ErrUnauthorized
	}

	// Событие до удаления: подписчики должны узнать об уничтожении
	// даже если доставка и удаление ключей гонятся между собой
	err := s.channel.Publish(ctx, identity.RoomID, domain.EventDestroy, domain.DestroyPayload{
		IsDestroyed: true,
	})
	if err != nil {
		return err
	}

	if err := s.roomRepo.Delete(ctx, identity.RoomID); err != nil {
		return err
	}
	if err := s.messageRepo.Delete(ctx, identity.RoomID); err != nil {
		return err
	}

	s.log.Info("Room destroyed", "room_id", identity.RoomID)

	return nil
}
