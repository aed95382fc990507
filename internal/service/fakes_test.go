package service

import (
	"context"
	"time"

	"ephemeral_chat/internal/domain"
)

// Фейки хранилища и канала событий для тестов сервисов.
// journal фиксирует порядок побочных эффектов, чтобы проверять
// ориентированные на порядок инварианты (append до publish,
// publish до delete).

type fakeRoomRepo struct {
	rooms   map[string]time.Duration
	journal *[]string
}

func newFakeRoomRepo(journal *[]string) *fakeRoomRepo {
	return &fakeRoomRepo{
		rooms:   make(map[string]time.Duration),
		journal: journal,
	}
}

func (f *fakeRoomRepo) record(op string) {
	if f.journal != nil {
		*f.journal = append(*f.journal, op)
	}
}

func (f *fakeRoomRepo) Create(ctx context.Context, room *domain.Room, ttl time.Duration) error {
	f.rooms[room.ID] = ttl
	f.record("room.create")
	return nil
}

func (f *fakeRoomRepo) Exists(ctx context.Context, roomID string) (bool, error) {
	_, ok := f.rooms[roomID]
	return ok, nil
}

func (f *fakeRoomRepo) RemainingTTL(ctx context.Context, roomID string) (time.Duration, error) {
	return f.rooms[roomID], nil
}

func (f *fakeRoomRepo) Delete(ctx context.Context, roomID string) error {
	delete(f.rooms, roomID)
	f.record("room.delete")
	return nil
}

type fakeMessageRepo struct {
	messages map[string][]*domain.Message
	expires  map[string]time.Duration
	journal  *[]string
}

func newFakeMessageRepo(journal *[]string) *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[string][]*domain.Message),
		expires:  make(map[string]time.Duration),
		journal:  journal,
	}
}

func (f *fakeMessageRepo) record(op string) {
	if f.journal != nil {
		*f.journal = append(*f.journal, op)
	}
}

func (f *fakeMessageRepo) Append(ctx context.Context, roomID string, message *domain.Message) error {
	stored := *message
	f.messages[roomID] = append(f.messages[roomID], &stored)
	f.record("messages.append")
	return nil
}

func (f *fakeMessageRepo) List(ctx context.Context, roomID string) ([]*domain.Message, error) {
	// Копии, как из стора: List не должен отдавать общие указатели
	out := make([]*domain.Message, 0, len(f.messages[roomID]))
	for _, m := range f.messages[roomID] {
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeMessageRepo) ExpireIn(ctx context.Context, roomID string, ttl time.Duration) error {
	f.expires[roomID] = ttl
	f.record("messages.expire")
	return nil
}

func (f *fakeMessageRepo) Delete(ctx context.Context, roomID string) error {
	delete(f.messages, roomID)
	f.record("messages.delete")
	return nil
}

type publishedEvent struct {
	RoomID  string
	Event   string
	Payload any
}

type fakePublisher struct {
	events  []publishedEvent
	journal *[]string
}

func newFakePublisher(journal *[]string) *fakePublisher {
	return &fakePublisher{journal: journal}
}

func (f *fakePublisher) Publish(ctx context.Context, roomID, event string, payload any) error {
	f.events = append(f.events, publishedEvent{RoomID: roomID, Event: event, Payload: payload})
	if f.journal != nil {
		*f.journal = append(*f.journal, "publish:"+event)
	}
	return nil
}
