package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ephemeral_chat/internal/middleware"
	"ephemeral_chat/internal/service"
	apperrors "ephemeral_chat/pkg/errors"
	"ephemeral_chat/pkg/logger"
)

type RoomHandler struct {
	roomService service.RoomService
	log         logger.Logger
}

func NewRoomHandler(roomService service.RoomService, log logger.Logger) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
		log:         log,
	}
}

type CreateRoomRequest struct {
	TTLMinutes *int `json:"ttlMinutes"`
}

func (h *RoomHandler) Create(c *gin.Context) {
	// Тело опционально: без него применяется TTL по умолчанию,
	// значения за границами зажимаются в сервисе
	var req CreateRoomRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	result, err := h.roomService.Create(c.Request.Context(), req.TTLMinutes)
	if err != nil {
		h.log.Error("Failed to create room", "error", err)
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": "failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"roomId": result.Room.ID,
		"token":  result.Token,
	})
}

func (h *RoomHandler) Join(c *gin.Context) {
	roomID := c.Param("id")

	token, err := h.roomService.Join(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"roomId": roomID,
		"token":  token,
	})
}

func (h *RoomHandler) GetTTL(c *gin.Context) {
	// Тотальная операция: для отсутствующей комнаты отдаем 0,
	// фронтенд рисует по этому значению обратный отсчет
	ttl, err := h.roomService.RemainingTTL(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get room TTL", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get ttl"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ttl": int64(ttl.Seconds())})
}

func (h *RoomHandler) Destroy(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	if err := h.roomService.Destroy(c.Request.Context(), identity); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
