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

type Applications struct {
	DB  *database.DB
	Log zerolog.Logger
}

type ApplyRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
}

type ApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending accepted rejected"`
}

// Submit files an application from the caller to an existing project.
func (h *Applications) Submit(c *gin.Context) {
	var body ApplyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	applicantID := c.GetString(middleware.ContextUserID)

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

	err = h.DB.Applications.FindOne(ctx, bson.M{
		"projectId":   body.ProjectID,
		"applicantId": applicantID,
	}).Err()
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already applied to this project", "code": "CONFLICT"})
		return
	}
	if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "code": "INTERNAL"})
		return
	}

	application := models.Application{
		ID:          models.NewID("app"),
		ProjectID:   body.ProjectID,
		ApplicantID: applicantID,
		Status:      models.StatusPending,
		CreatedAt:   time.Now().UnixMilli(),
	}
	if _, err := h.DB.Applications.InsertOne(ctx, application); err != nil {
		h.Log.Error().Err(err).Msg("application insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application", "code": "INTERNAL"})
		return
	}

	h.notify(ctx, project.CreatedBy, models.NotifyApplication,
		"New application for "+project.Title)

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Application submitted",
		"applicationId": application.ID,
	})
}

// ListForProject returns a project's applications to its owner.
func (h *Applications) ListForProject(c *gin.Context) {
	projectID := c.Param("id")
	userID := c.GetString(middleware.ContextUserID)

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var project models.Project
	err := h.DB.Projects.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found", "code": "NOT_FOUND"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "code": "INTERNAL"})
		return
	}
	if project.CreatedBy != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner can view applications", "code": "PERMISSION_DENIED"})
		return
	}

	cursor, err := h.DB.Applications.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications", "code": "INTERNAL"})
		return
	}
	defer cursor.Close(ctx)

	applications := []models.Application{}
	if err := cursor.All(ctx, &applications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode applications", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, applications)
}

// UpdateStatus lets the project owner accept or reject an application.
// Accepting also adds the applicant to the project's collaborators.
func (h *Applications) UpdateStatus(c *gin.Context) {
	applicationID := c.Param("id")
	userID := c.GetString(middleware.ContextUserID)

	var body ApplicationStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var application models.Application
	err := h.DB.Applications.FindOne(ctx, bson.M{"_id": applicationID}).Decode(&application)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found", "code": "NOT_FOUND"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "code": "INTERNAL"})
		return
	}

	var project models.Project
	if err := h.DB.Projects.FindOne(ctx, bson.M{"_id": application.ProjectID}).Decode(&project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "code": "INTERNAL"})
		return
	}
	if project.CreatedBy != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner can decide applications", "code": "PERMISSION_DENIED"})
		return
	}

	_, err = h.DB.Applications.UpdateOne(ctx, bson.M{"_id": applicationID}, bson.M{
		"$set": bson.M{"status": body.Status},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application", "code": "INTERNAL"})
		return
	}

	if body.Status == models.StatusAccepted {
		_, _ = h.DB.Projects.UpdateOne(ctx, bson.M{"_id": project.ID},
			bson.M{"$addToSet": bson.M{"collaborators": application.ApplicantID}})
	}

	h.notify(ctx, application.ApplicantID, models.NotifyApplication,
		"Your application to "+project.Title+" was "+body.Status)

	c.JSON(http.StatusOK, gin.H{"message": "Application " + body.Status})
}

func (h *Applications) notify(ctx context.Context, userID, kind, content string) {
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
