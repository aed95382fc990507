package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ephemeral_chat/internal/config"
	apperrors "ephemeral_chat/pkg/errors"
	"ephemeral_chat/pkg/logger"
)

func newTestAuthService() AuthService {
	return NewAuthService(testJWTConfig(), testRoomConfig(), logger.New("error"))
}

func TestAuthService_IssueAndAuthorize(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	token, err := auth.IssueToken(ctx, "room-1")
	if err != nil {
		t.Fatalf("IssueToken() unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("IssueToken() returned empty token")
	}

	identity, err := auth.Authorize(ctx, token, "room-1")
	if err != nil {
		t.Fatalf("Authorize() unexpected error: %v", err)
	}
	if identity.RoomID != "room-1" {
		t.Errorf("identity.RoomID = %q, want %q", identity.RoomID, "room-1")
	}
	if identity.Token == "" {
		t.Error("identity.Token should not be empty")
	}
}

func TestAuthService_TokensAreDistinct(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	tokenA, _ := auth.IssueToken(ctx, "room-1")
	tokenB, _ := auth.IssueToken(ctx, "room-1")

	identityA, err := auth.Authorize(ctx, tokenA, "room-1")
	if err != nil {
		t.Fatalf("Authorize(tokenA) error: %v", err)
	}
	identityB, err := auth.Authorize(ctx, tokenB, "room-1")
	if err != nil {
		t.Fatalf("Authorize(tokenB) error: %v", err)
	}

	// У каждого участника свой токен авторства
	if identityA.Token == identityB.Token {
		t.Error("two issued identities share the same participant token")
	}
}

func TestAuthService_Authorize_Rejections(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	validToken, err := auth.IssueToken(ctx, "room-1")
	if err != nil {
		t.Fatalf("IssueToken() unexpected error: %v", err)
	}

	otherSecret := NewAuthService(config.JWTConfig{Secret: "other-secret", Issuer: "test"}, testRoomConfig(), logger.New("error"))
	foreignToken, err := otherSecret.IssueToken(ctx, "room-1")
	if err != nil {
		t.Fatalf("IssueToken() with other secret error: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		roomID  string
		wantErr error
	}{
		{name: "wrong room", token: validToken, roomID: "room-2", wantErr: apperrors.ErrUnauthorized},
		{name: "garbage token", token: "not-a-jwt", roomID: "room-1", wantErr: apperrors.ErrInvalidToken},
		{name: "empty token", token: "", roomID: "room-1", wantErr: apperrors.ErrInvalidToken},
		{name: "foreign signature", token: foreignToken, roomID: "room-1", wantErr: apperrors.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Authorize(ctx, tt.token, tt.roomID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authorize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthService_Authorize_Expired(t *testing.T) {
	// MaxTTL в прошлом дает заведомо истекший токен
	expiredCfg := testRoomConfig()
	expiredCfg.MaxTTL = -time.Minute

	auth := NewAuthService(testJWTConfig(), expiredCfg, logger.New("error"))
	ctx := context.Background()

	token, err := auth.IssueToken(ctx, "room-1")
	if err != nil {
		t.Fatalf("IssueToken() unexpected error: %v", err)
	}

	_, err = auth.Authorize(ctx, token, "room-1")
	if !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Errorf("Authorize() error = %v, want ErrTokenExpired", err)
	}
}
