package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ephemeral_chat/internal/domain"
	"ephemeral_chat/internal/events"
	"ephemeral_chat/internal/repository"
	apperrors "ephemeral_chat/pkg/errors"
	"ephemeral_chat/pkg/logger"
)

type ChatService interface {
	// Отправить сообщение в комнату. Возвращает сообщение
	// с токеном авторства - вызывающий и есть автор
	Send(ctx context.Context, identity *domain.ScopedIdentity, sender, text string) (*domain.Message, error)

	// Все сообщения комнаты в порядке добавления. Токен авторства
	// остается только у сообщений самого вызывающего
	List(ctx context.Context, identity *domain.ScopedIdentity) ([]*domain.Message, error)
}

type chatService struct {
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
	channel     events.Publisher
	log         logger.Logger
}

func NewChatService(
	roomRepo repository.RoomRepository,
	messageRepo repository.MessageRepository,
	channel events.Publisher,
	log logger.Logger,
) ChatService {
	return &chatService{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		channel:     channel,
		log:         log,
	}
}

func (s *chatService) Send(ctx context.Context, identity *domain.ScopedIdentity, sender, text string) (*domain.Message, error) {
	if identity == nil {
		return nil, apperrors.ErrUnauthorized
	}

	// Комната могла истечь между этой проверкой и записью.
	// Такое сообщение исчезнет вместе с ключом - допустимо,
	// главное что ключ без комнаты не живет дольше нее
	exists, err := s.roomRepo.Exists(ctx, identity.RoomID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}

	message := &domain.Message{
		ID:        uuid.New().String(),
		RoomID:    identity.RoomID,
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
		Token:     identity.Token,
	}

	if err := s.messageRepo.Append(ctx, identity.RoomID, message); err != nil {
		return nil, err
	}

	// Запись в лог строго до публикации: подписчик не должен
	// увидеть событие о сообщении, которого еще нет в List
	wire := *message
	wire.Token = ""
	if err := s.channel.Publish(ctx, identity.RoomID, domain.EventMessage, wire); err != nil {
		return nil, err
	}

	// Пересинхронизация TTL лога с метаданными комнаты после
	// каждой записи. Если комната истекла между проверкой и
	// записью, RPush пересоздал ключ лога уже без TTL - такой
	// лог без комнаты удаляем, иначе он останется навсегда
	remaining, err := s.roomRepo.RemainingTTL(ctx, identity.RoomID)
	if err != nil {
		return nil, err
	}
	if remaining > 0 {
		if err := s.messageRepo.ExpireIn(ctx, identity.RoomID, remaining); err != nil {
			return nil, err
		}
	} else {
		if err := s.messageRepo.Delete(ctx, identity.RoomID); err != nil {
			return nil, err
		}
	}

	return message, nil
}

func (s *chatService) List(ctx context.Context, identity *domain.ScopedIdentity) ([]*domain.Message, error) {
	if identity == nil {
		return nil, apperrors.ErrUnauthorized
	}

	messages, err := s.messageRepo.List(ctx, identity.RoomID)
	if err != nil {
		return nil, err
	}

	// Редактирование токена - единственное, чем ответ одному
	// участнику отличается от ответа другому
	for _, message := range messages {
		if message.Token != identity.Token {
			message.Token = ""
		}
	}

	return messages, nil
}
