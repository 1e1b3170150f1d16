package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"collabo/database"
	"collabo/middleware"
	"collabo/models"
)

type Friends struct {
	DB  *database.DB
	Log zerolog.Logger
}

type FriendRequestBody struct {
	RecipientID string `json:"recipientId" binding:"required"`
}

type RespondFriendRequestBody struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// SendRequest creates a pending friend request unless one already
// exists between the pair in either direction.
func (h *Friends) SendRequest(c *gin.Context) {
	var body FriendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	senderID := c.GetString(middleware.ContextUserID)
	if senderID == body.RecipientID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot send a friend request to yourself", "code": "BAD_REQUEST"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if err := h.DB.Users.FindOne(ctx, bson.M{"_id": body.RecipientID}).Err(); err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found", "code": "NOT_FOUND"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "code": "INTERNAL"})
		return
	}

	pair := bson.M{"$or": []bson.M{
		{"senderId": senderID, "recipientId": body.RecipientID},
		{"senderId": body.RecipientID, "recipientId": senderID},
	}}
	err := h.DB.FriendRequests.FindOne(ctx, pair).Err()
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Friend request already exists", "code": "CONFLICT"})
		return
	}
	if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "code": "INTERNAL"})
		return
	}

	request := models.FriendRequest{
		ID:          models.NewID("freq"),
		SenderID:    senderID,
		RecipientID: body.RecipientID,
		Status:      models.StatusPending,
		CreatedAt:   time.Now().UnixMilli(),
	}
	if _, err := h.DB.FriendRequests.InsertOne(ctx, request); err != nil {
		h.Log.Error().Err(err).Msg("friend request insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send friend request", "code": "INTERNAL"})
		return
	}

	h.notify(ctx, body.RecipientID, models.NotifyFriendRequest, "You received a friend request")

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Friend request sent",
		"requestId": request.ID,
	})
}

// Respond lets the recipient accept or reject a pending request.
// Accepting records a friendship document for the pair.
func (h *Friends) Respond(c *gin.Context) {
	requestID := c.Param("id")
	userID := c.GetString(middleware.ContextUserID)

	var body RespondFriendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var request models.FriendRequest
	err := h.DB.FriendRequests.FindOne(ctx, bson.M{"_id": requestID}).Decode(&request)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Friend request not found", "code": "NOT_FOUND"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "code": "INTERNAL"})
		return
	}

	if request.RecipientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the recipient can respond", "code": "PERMISSION_DENIED"})
		return
	}
	if request.Status != models.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Friend request already handled", "code": "CONFLICT"})
		return
	}

	_, err = h.DB.FriendRequests.UpdateOne(ctx, bson.M{"_id": requestID}, bson.M{
		"$set": bson.M{"status": body.Status},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update friend request", "code": "INTERNAL"})
		return
	}

	if body.Status == models.StatusAccepted {
		friendship := models.Friendship{
			ID:        models.NewID("friendship"),
			User1ID:   request.SenderID,
			User2ID:   request.RecipientID,
			CreatedAt: time.Now().UnixMilli(),
		}
		if _, err := h.DB.Friendships.InsertOne(ctx, friendship); err != nil {
			h.Log.Error().Err(err).Msg("friendship insert failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record friendship", "code": "INTERNAL"})
			return
		}

		// Mirror the pairing on both profiles.
		_, _ = h.DB.Users.UpdateOne(ctx, bson.M{"_id": request.SenderID},
			bson.M{"$addToSet": bson.M{"friends": request.RecipientID}})
		_, _ = h.DB.Users.UpdateOne(ctx, bson.M{"_id": request.RecipientID},
			bson.M{"$addToSet": bson.M{"friends": request.SenderID}})

		h.notify(ctx, request.SenderID, models.NotifyFriendRequest, "Your friend request was accepted")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request " + body.Status})
}

// List returns the caller's friends with the partner's display name.
func (h *Friends) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cursor, err := h.DB.Friendships.Find(ctx, bson.M{"$or": []bson.M{
		{"user1Id": userID},
		{"user2Id": userID},
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends", "code": "INTERNAL"})
		return
	}
	defer cursor.Close(ctx)

	friendships := []models.Friendship{}
	if err := cursor.All(ctx, &friendships); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode friends", "code": "INTERNAL"})
		return
	}

	friends := []models.Friend{}
	for _, f := range friendships {
		partnerID := f.User1ID
		if partnerID == userID {
			partnerID = f.User2ID
		}

		friend := models.Friend{UserID: partnerID, CreatedAt: f.CreatedAt}
		var partner models.User
		if err := h.DB.Users.FindOne(ctx, bson.M{"_id": partnerID}).Decode(&partner); err == nil {
			friend.Name = partner.Name
		}
		friends = append(friends, friend)
	}

	c.JSON(http.StatusOK, friends)
}

func (h *Friends) notify(ctx context.Context, userID, kind, content string) {
	notification := models.Notification{
		ID:        models.NewID("notif"),
		UserID:    userID,
		Type:      kind,
		Content:   content,
		CreatedAt: time.Now().UnixMilli(),
	}
	if _, err := h.DB.Notifications.InsertOne(ctx, notification); err != nil {
		h.Log.Warn().Err(err).Str("user", userID).Msg("failed to write notification")
	}
}
