package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ephemeral_chat/internal/config"
	"ephemeral_chat/internal/service"
	"ephemeral_chat/pkg/logger"
)

func setupAuthTest(t *testing.T) (*gin.Engine, service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := service.NewAuthService(
		config.JWTConfig{Secret: "test-secret", Issuer: "test"},
		config.RoomConfig{
			DefaultTTL: 10 * time.Minute,
			MinTTL:     time.Minute,
			MaxTTL:     120 * time.Minute,
		},
		logger.New("error"),
	)

	m := NewAuthMiddleware(auth, logger.New("error"))

	router := gin.New()
	router.GET("/rooms/:id/probe", m.RequireRoomAccess(), func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"roomId": identity.RoomID})
	})

	return router, auth
}

func TestRequireRoomAccess(t *testing.T) {
	router, auth := setupAuthTest(t)

	token, err := auth.IssueToken(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("IssueToken() unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		authHeader string
		query      string
		wantStatus int
	}{
		{
			name:       "valid bearer token",
			path:       "/rooms/room-1/probe",
			authHeader: "Bearer " + token,
			wantStatus: http.StatusOK,
		},
		{
			name:       "token in query for websocket clients",
			path:       "/rooms/room-1/probe",
			query:      "?token=" + token,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing credentials",
			path:       "/rooms/room-1/probe",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "token scoped to another room",
			path:       "/rooms/room-2/probe",
			authHeader: "Bearer " + token,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			path:       "/rooms/room-1/probe",
			authHeader: "Token " + token,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			path:       "/rooms/room-1/probe",
			authHeader: "Bearer not-a-jwt",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path+tt.query, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
