package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"collabo/messaging"
	"collabo/middleware"
	"collabo/models"
)

// Messages exposes the one-shot HTTP entry points over the same router
// and store the realtime channel uses.
type Messages struct {
	Router *messaging.Router
	Store  *messaging.Store
	Log    zerolog.Logger
}

// Send accepts a single message without an open realtime channel. The
// receiver still gets it pushed immediately when connected.
func (h *Messages) Send(c *gin.Context) {
	var payload messaging.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	senderID := c.GetString(middleware.ContextUserID)

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	msg, err := h.Router.Send(ctx, senderID, payload)
	if errors.Is(err, messaging.ErrInvalidPayload) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid message payload", "code": "UNPROCESSABLE"})
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("message send failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// Conversation returns the caller's conversation with another user.
func (h *Messages) Conversation(c *gin.Context) {
	callerID := c.GetString(middleware.ContextUserID)
	partnerID := c.Param("userId")

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	conv, err := h.Store.Conversation(ctx, callerID, partnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation", "code": "INTERNAL"})
		return
	}
	if conv == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, conv)
}

// History lists every conversation the caller participates in.
func (h *Messages) History(c *gin.Context) {
	callerID := c.GetString(middleware.ContextUserID)

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	convs, err := h.Store.History(ctx, callerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations", "code": "INTERNAL"})
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}

	c.JSON(http.StatusOK, convs)
}
