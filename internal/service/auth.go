package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ephemeral_chat/internal/config"
	"ephemeral_chat/internal/domain"
	apperrors "ephemeral_chat/pkg/errors"
	"ephemeral_chat/pkg/logger"
)

// AuthService выдает и проверяет capability-токены комнат.
// Токен связывает комнату и непрозрачный токен участника;
// сама схема выдачи (при создании и при join) - деталь этого
// сервиса, остальной код видит только ScopedIdentity.
type AuthService interface {
	// Выдать подписанный токен доступа к комнате
	IssueToken(ctx context.Context, roomID string) (string, error)

	// Проверить токен и что он выдан именно на целевую комнату
	Authorize(ctx context.Context, tokenString, roomID string) (*domain.ScopedIdentity, error)
}

type roomClaims struct {
	Token string `json:"token"`
	jwt.RegisteredClaims
}

type authService struct {
	jwtCfg  config.JWTConfig
	roomCfg config.RoomConfig
	log     logger.Logger
}

func NewAuthService(jwtCfg config.JWTConfig, roomCfg config.RoomConfig, log logger.Logger) AuthService {
	return &authService{
		jwtCfg:  jwtCfg,
		roomCfg: roomCfg,
		log:     log,
	}
}

func (s *authService) IssueToken(ctx context.Context, roomID string) (string, error) {
	now := time.Now()

	claims := roomClaims{
		// Токен участника - случайный, не display name
		Token: uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.jwtCfg.Issuer,
			Subject:  roomID,
			IssuedAt: jwt.NewNumericDate(now),
			// Токен не может пережить максимально возможную комнату
			ExpiresAt: jwt.NewNumericDate(now.Add(s.roomCfg.MaxTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		s.log.Error("Failed to sign room token", "error", err, "room_id", roomID)
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (s *authService) Authorize(ctx context.Context, tokenString, roomID string) (*domain.ScopedIdentity, error) {
	claims := &roomClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if !token.Valid || claims.Token == "" || claims.Subject == "" {
		return nil, apperrors.ErrInvalidToken
	}

	// Токен валиден, но выдан на другую комнату
	if claims.Subject != roomID {
		return nil, apperrors.ErrUnauthorized
	}

	return &domain.ScopedIdentity{
		RoomID: claims.Subject,
		Token:  claims.Token,
	}, nil
}
