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

type Projects struct {
	DB  *database.DB
	Log zerolog.Logger
}

type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required,min=4,max=100"`
	Description string   `json:"description" binding:"max=1000"`
	Deadline    string   `json:"deadline"`
	Type        string   `json:"type"`
	Skills      []string `json:"skills"`
	Tags        []string `json:"tags"`
	Tools       []string `json:"tools"`
	Location    string   `json:"location"`
}

type UpdateProjectRequest struct {
	Title         *string  `json:"title" binding:"omitempty,min=4,max=100"`
	Description   *string  `json:"description" binding:"omitempty,max=1000"`
	Deadline      *string  `json:"deadline"`
	Type          *string  `json:"type"`
	Location      *string  `json:"location"`
	Skills        []string `json:"skills"`
	Collaborators []string `json:"collaborators"`
	Tools         []string `json:"tools"`
}

func (h *Projects) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	userID := c.GetString(middleware.ContextUserID)

	project := models.Project{
		ID:            models.NewID("project"),
		Title:         req.Title,
		Description:   req.Description,
		CreatedBy:     userID,
		Deadline:      req.Deadline,
		Type:          req.Type,
		Skills:        orEmpty(req.Skills),
		Tags:          orEmpty(req.Tags),
		Collaborators: []string{},
		Followers:     []string{},
		Tools:         orEmpty(req.Tools),
		Location:      req.Location,
		CreatedAt:     time.Now().UnixMilli(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if _, err := h.DB.Projects.InsertOne(ctx, project); err != nil {
		h.Log.Error().Err(err).Msg("project insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Project creation failed", "code": "INTERNAL"})
		return
	}

	// Record the project on its creator's profile as well.
	_, err := h.DB.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$addToSet": bson.M{"projects": project.ID},
	})
	if err != nil {
		// Not critical, the project document is the source of truth.
		h.Log.Warn().Err(err).Str("project", project.ID).Msg("failed to link project to creator")
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Project created successfully",
		"projectId": project.ID,
	})
}

func (h *Projects) Get(c *gin.Context) {
	projectID := c.Param("id")

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var project models.Project
	err := h.DB.Projects.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found", "code": "NOT_FOUND"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *Projects) Update(c *gin.Context) {
	projectID := c.Param("id")
	userID := c.GetString(middleware.ContextUserID)

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	set := bson.M{"updatedAt": time.Now().UnixMilli()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Deadline != nil {
		set["deadline"] = *req.Deadline
	}
	if req.Type != nil {
		set["type"] = *req.Type
	}
	if req.Location != nil {
		set["location"] = *req.Location
	}

	addToSet := bson.M{}
	if len(req.Skills) > 0 {
		addToSet["skills"] = bson.M{"$each": req.Skills}
	}
	if len(req.Collaborators) > 0 {
		addToSet["collaborators"] = bson.M{"$each": req.Collaborators}
	}
	if len(req.Tools) > 0 {
		addToSet["tools"] = bson.M{"$each": req.Tools}
	}

	update := bson.M{"$set": set}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	// Only the owner updates a project.
	result, err := h.DB.Projects.UpdateOne(ctx, bson.M{"_id": projectID, "createdBy": userID}, update)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project", "code": "INTERNAL"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project updated successfully"})
}

func (h *Projects) Delete(c *gin.Context) {
	projectID := c.Param("id")
	userID := c.GetString(middleware.ContextUserID)

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	result, err := h.DB.Projects.DeleteOne(ctx, bson.M{"_id": projectID, "createdBy": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project", "code": "INTERNAL"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// ListByUser returns every project created by the given user.
func (h *Projects) ListByUser(c *gin.Context) {
	userID := c.Param("id")

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cursor, err := h.DB.Projects.Find(ctx, bson.M{"createdBy": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects", "code": "INTERNAL"})
		return
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode projects", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, projects)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
