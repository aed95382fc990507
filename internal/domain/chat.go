package domain

import "time"

// Message - сообщение чата. После создания не изменяется,
// только добавляется в конец лога и истекает вместе с комнатой.
type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	// Token - токен авторства. В сторе присутствует всегда,
	// наружу отдается только автору сообщения.
	Token string `json:"token,omitempty"`
}

// Имена событий каналов комнат
const (
	EventMessage = "chat.message"
	EventDestroy = "chat.destroy"
)

// DestroyPayload - полезная нагрузка события chat.destroy
type DestroyPayload struct {
	IsDestroyed bool `json:"isDestroyed"`
}
