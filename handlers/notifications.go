package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"collabo/database"
	"collabo/middleware"
	"collabo/models"
)

type Notifications struct {
	DB  *database.DB
	Log zerolog.Logger
}

// List returns the caller's notifications, newest first. Supports
// ?unread_only=true and ?limit=N.
func (h *Notifications) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	query := bson.M{"userId": userID}
	if c.Query("unread_only") == "true" {
		query["isRead"] = false
	}

	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200", "code": "BAD_REQUEST"})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cursor, err := h.DB.Notifications.Find(ctx, query,
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(limit),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications", "code": "INTERNAL"})
		return
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode notifications", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkRead flags one of the caller's notifications as read.
func (h *Notifications) MarkRead(c *gin.Context) {
	notificationID := c.Param("id")
	userID := c.GetString(middleware.ContextUserID)

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	result, err := h.DB.Notifications.UpdateOne(ctx,
		bson.M{"_id": notificationID, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification", "code": "INTERNAL"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead flags every unread notification of the caller.
func (h *Notifications) MarkAllRead(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	result, err := h.DB.Notifications.UpdateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notifications marked as read",
		"updated": result.ModifiedCount,
	})
}

// Create records a notification for any user. Exposed for internal
// tooling and kept compatible with the feed the other handlers write.
func (h *Notifications) Create(c *gin.Context) {
	var body struct {
		UserID  string `json:"userId" binding:"required"`
		Type    string `json:"type" binding:"required,oneof=friend_request invitation application message"`
		Content string `json:"content" binding:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	notification := models.Notification{
		ID:        models.NewID("notif"),
		UserID:    body.UserID,
		Type:      body.Type,
		Content:   body.Content,
		CreatedAt: time.Now().UnixMilli(),
	}
	if _, err := h.DB.Notifications.InsertOne(ctx, notification); err != nil {
		h.Log.Error().Err(err).Msg("notification insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"notificationId": notification.ID})
}
