package domain

import "time"

// Room - комната с ограниченным временем жизни.
// Оставшееся время жизни не хранится в модели: оно всегда
// читается из стора, чтобы не расходиться с реальным TTL ключа.
type Room struct {
	ID        string    `json:"roomId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ScopedIdentity - результат проверки capability-токена:
// подтвержденная пара (комната, непрозрачный токен участника).
// Не персистится, вычисляется на каждый запрос.
type ScopedIdentity struct {
	RoomID string
	Token  string
}
