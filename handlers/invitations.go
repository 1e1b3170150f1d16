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

type Invitations struct {
	DB  *database.DB
	Log zerolog.Logger
}

type InviteRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	InviteeID string `json:"inviteeId" binding:"required"`
}

type InvitationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// Send invites a user to a project. Only the project owner can invite.
func (h *Invitations) Send(c *gin.Context) {
	var body InviteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	inviterID := c.GetString(middleware.ContextUserID)

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var project models.Project
	err := h.DB.Projects.FindOne(ctx, bson.M{"_id": body.ProjectID}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found", "code": "NOT_FOUND"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "code": "INTERNAL"})
		return
	}
	if project.CreatedBy != inviterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner can invite", "code": "PERMISSION_DENIED"})
		return
	}

	if err := h.DB.Users.FindOne(ctx, bson.M{"_id": body.InviteeID}).Err(); err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitee not found", "code": "NOT_FOUND"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "code": "INTERNAL"})
		return
	}

	err = h.DB.Invitations.FindOne(ctx, bson.M{
		"projectId": body.ProjectID,
		"inviteeId": body.InviteeID,
	}).Err()
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already invited to this project", "code": "CONFLICT"})
		return
	}
	if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "code": "INTERNAL"})
		return
	}

	invitation := models.Invitation{
		ID:        models.NewID("invite"),
		ProjectID: body.ProjectID,
		InviterID: inviterID,
		InviteeID: body.InviteeID,
		Status:    models.StatusPending,
		CreatedAt: time.Now().UnixMilli(),
	}
	if _, err := h.DB.Invitations.InsertOne(ctx, invitation); err != nil {
		h.Log.Error().Err(err).Msg("invitation insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send invitation", "code": "INTERNAL"})
		return
	}

	h.notify(ctx, body.InviteeID, "You were invited to join "+project.Title)

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Invitation sent",
		"invitationId": invitation.ID,
	})
}

// List returns the caller's received invitations.
func (h *Invitations) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cursor, err := h.DB.Invitations.Find(ctx, bson.M{"inviteeId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invitations", "code": "INTERNAL"})
		return
	}
	defer cursor.Close(ctx)

	invitations := []models.Invitation{}
	if err := cursor.All(ctx, &invitations); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode invitations", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, invitations)
}

// Respond lets the invitee accept or reject an invitation. Accepting
// adds them to the project's collaborators.
func (h *Invitations) Respond(c *gin.Context) {
	invitationID := c.Param("id")
	userID := c.GetString(middleware.ContextUserID)

	var body InvitationStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var invitation models.Invitation
	err := h.DB.Invitations.FindOne(ctx, bson.M{"_id": invitationID}).Decode(&invitation)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found", "code": "NOT_FOUND"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "code": "INTERNAL"})
		return
	}

	if invitation.InviteeID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the invitee can respond", "code": "PERMISSION_DENIED"})
		return
	}
	if invitation.Status != models.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Invitation already handled", "code": "CONFLICT"})
		return
	}

	_, err = h.DB.Invitations.UpdateOne(ctx, bson.M{"_id": invitationID}, bson.M{
		"$set": bson.M{"status": body.Status},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invitation", "code": "INTERNAL"})
		return
	}

	if body.Status == models.StatusAccepted {
		_, _ = h.DB.Projects.UpdateOne(ctx, bson.M{"_id": invitation.ProjectID},
			bson.M{"$addToSet": bson.M{"collaborators": userID}})
	}

	h.notify(ctx, invitation.InviterID, "Your invitation was "+body.Status)

	c.JSON(http.StatusOK, gin.H{"message": "Invitation " + body.Status})
}

func (h *Invitations) notify(ctx context.Context, userID, content string) {
	notification := models.Notification{
		ID:        models.NewID("notif"),
		UserID:    userID,
		Type:      models.NotifyInvitation,
		Content:   content,
		CreatedAt: time.Now().UnixMilli(),
	}
	if _, err := h.DB.Notifications.InsertOne(ctx, notification); err != nil {
		h.Log.Warn().Err(err).Str("user", userID).Msg("failed to write notification")
	}
}
