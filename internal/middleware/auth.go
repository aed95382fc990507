package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"ephemeral_chat/internal/domain"
	"ephemeral_chat/internal/service"
	apperrors "ephemeral_chat/pkg/errors"
	"ephemeral_chat/pkg/logger"
)

const identityContextKey = "identity"

type AuthMiddleware struct {
	authService service.AuthService
	log         logger.Logger
}

func NewAuthMiddleware(authService service.AuthService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		log:         log,
	}
}

// RequireRoomAccess проверяет capability-токен и что он выдан
// на комнату из пути запроса. Идентичность кладется в контекст
func (m *AuthMiddleware) RequireRoomAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			status := apperrors.HTTPStatusFromError(apperrors.ErrUnauthorized)
			c.JSON(status, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		identity, err := m.authService.Authorize(c.Request.Context(), tokenString, c.Param("id"))
		if err != nil {
			c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// extractToken достает токен из заголовка Authorization,
// для WebSocket соединений - из query параметра token
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	return c.Query("token")
}

// IdentityFromContext возвращает идентичность, установленную RequireRoomAccess
func IdentityFromContext(c *gin.Context) (*domain.ScopedIdentity, bool) {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return nil, false
	}

	identity, ok := value.(*domain.ScopedIdentity)
	return identity, ok
}
