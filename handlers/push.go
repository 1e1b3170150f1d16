package handlers

import (
	"context"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"collabo/database"
	"collabo/middleware"
	"collabo/models"
)

// Push manages browser push subscriptions.
type Push struct {
	DB        *database.DB
	PublicKey string
	Log       zerolog.Logger
}

// Subscribe stores or replaces the caller's push subscription.
func (h *Push) Subscribe(c *gin.Context) {
	var sub webpush.Subscription
	if err := c.ShouldBindJSON(&sub); err != nil || sub.Endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription", "code": "BAD_REQUEST"})
		return
	}

	userID := c.GetString(middleware.ContextUserID)

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err := h.DB.PushSubs.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$set":         bson.M{"sub": sub},
			"$setOnInsert": bson.M{"_id": models.NewID("sub"), "userId": userID},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		h.Log.Error().Err(err).Msg("push subscription upsert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscription", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Subscription saved"})
}

// Unsubscribe removes the caller's push subscription.
func (h *Push) Unsubscribe(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if _, err := h.DB.PushSubs.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove subscription", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription removed"})
}

// VapidPublicKey hands the browser the key it needs to subscribe.
func (h *Push) VapidPublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publicKey": h.PublicKey})
}
