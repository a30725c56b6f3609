package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sahelys/sahelys-backend/middleware"
	mongosvc "github.com/sahelys/sahelys-backend/services/mongo"
	"go.uber.org/zap"
)

type messageHandlers struct {
	messages *mongosvc.MessageService
	logger   *zap.Logger
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Subject    string `json:"subject"`
	Content    string `json:"content" binding:"required"`
}

type broadcastRequest struct {
	ReceiverIDs []string `json:"receiver_ids" binding:"required"`
	Subject     string   `json:"subject"`
	Content     string   `json:"content" binding:"required"`
}

func (h *messageHandlers) send(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req sendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.messages.Send(c.Request.Context(), actor, req.ReceiverID, req.Subject, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *messageHandlers) broadcast(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req broadcastRequest
	if !bindJSON(c, &req) {
		return
	}

	messages, err := h.messages.Broadcast(c.Request.Context(), actor, req.ReceiverIDs, req.Subject, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("broadcast sent", zap.Int("receivers", len(messages)))
	c.JSON(http.StatusCreated, gin.H{"sent": len(messages), "messages": messages})
}

func (h *messageHandlers) inbox(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	limit, skip := pagination(c)

	unreadOnly := c.Query("unread_only") == "true"
	messages, err := h.messages.Inbox(c.Request.Context(), actor, unreadOnly, limit, skip)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *messageHandlers) get(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	message, err := h.messages.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

func (h *messageHandlers) markRead(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	message, err := h.messages.MarkRead(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

func (h *messageHandlers) delete(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.messages.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

func (h *messageHandlers) stats(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	stats, err := h.messages.Stats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
