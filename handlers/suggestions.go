package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"collabo/database"
	"collabo/middleware"
	"collabo/models"
)

// Suggestions recommends users and projects that overlap with the
// caller's skills and interests.
type Suggestions struct {
	DB  *database.DB
	Log zerolog.Logger
}

func (h *Suggestions) callerProfile(ctx context.Context, c *gin.Context) (*models.User, bool) {
	userID := c.GetString(middleware.ContextUserID)

	var user models.User
	err := h.DB.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "code": "NOT_FOUND"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile", "code": "INTERNAL"})
		return nil, false
	}
	return &user, true
}

func (h *Suggestions) Users(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	caller, ok := h.callerProfile(ctx, c)
	if !ok {
		return
	}

	query := buildUserQuery(UserFilter{
		Skills:    append(append([]string{}, caller.Skills...), caller.Interests...),
		Interests: caller.Interests,
		Location:  caller.Location,
	})
	// Never suggest the caller to themselves.
	query["_id"] = bson.M{"$ne": caller.ID}

	cursor, err := h.DB.Users.Find(ctx, query, userListOptions())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suggestions", "code": "INTERNAL"})
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suggestions", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *Suggestions) Projects(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	caller, ok := h.callerProfile(ctx, c)
	if !ok {
		return
	}

	query := buildProjectQuery(ProjectFilter{
		Skills:   append(append([]string{}, caller.Skills...), caller.Interests...),
		Location: caller.Location,
	})
	query["createdBy"] = bson.M{"$ne": caller.ID}

	cursor, err := h.DB.Projects.Find(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suggestions", "code": "INTERNAL"})
		return
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suggestions", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, projects)
}
