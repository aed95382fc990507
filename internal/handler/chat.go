package handler

import (
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"ephemeral_chat/internal/config"
	"ephemeral_chat/internal/middleware"
	"ephemeral_chat/internal/service"
	apperrors "ephemeral_chat/pkg/errors"
	"ephemeral_chat/pkg/logger"
)

type ChatHandler struct {
	chatService service.ChatService
	cfg         config.RoomConfig
	log         logger.Logger
}

func NewChatHandler(chatService service.ChatService, cfg config.RoomConfig, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		cfg:         cfg,
		log:         log,
	}
}

type SendMessageRequest struct {
	Sender string `json:"sender" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Лимиты в символах, не в байтах: кириллица и эмодзи
	// не должны съедать лимит вдвое-вчетверо быстрее
	if utf8.RuneCountInString(req.Sender) > h.cfg.MaxSenderLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sender is too long"})
		return
	}
	if utf8.RuneCountInString(req.Text) > h.cfg.MaxTextLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is too long"})
		return
	}

	message, err := h.chatService.Send(c.Request.Context(), identity, req.Sender, req.Text)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	messages, err := h.chatService.List(c.Request.Context(), identity)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
