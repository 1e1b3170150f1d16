package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"collabo/database"
	"collabo/models"
)

// userListOptions strips password hashes from any user listing.
func userListOptions() *options.FindOptions {
	return options.Find().SetProjection(bson.M{"password": 0})
}

type Search struct {
	DB  *database.DB
	Log zerolog.Logger
}

// UserFilter narrows a user search. String fields match
// case-insensitively as substrings; list fields match any element.
type UserFilter struct {
	Name      string   `json:"name" form:"name"`
	Location  string   `json:"location" form:"location"`
	Language  string   `json:"language" form:"language"`
	Skills    []string `json:"skills" form:"skills"`
	Interests []string `json:"interests" form:"interests"`
}

type ProjectFilter struct {
	Title         string   `json:"title" form:"title"`
	Type          string   `json:"type" form:"type"`
	Location      string   `json:"location" form:"location"`
	Skills        []string `json:"skills" form:"skills"`
	Tags          []string `json:"tags" form:"tags"`
	Tools         []string `json:"tools" form:"tools"`
	CreatedAfter  int64    `json:"createdAfter" form:"createdAfter"`
	CreatedBefore int64    `json:"createdBefore" form:"createdBefore"`
}

func regexMatch(value string) bson.M {
	return bson.M{"$regex": primitive.Regex{Pattern: value, Options: "i"}}
}

func buildUserQuery(f UserFilter) bson.M {
	query := bson.M{}
	if f.Name != "" {
		query["name"] = regexMatch(f.Name)
	}
	if f.Location != "" {
		query["location"] = regexMatch(f.Location)
	}
	if f.Language != "" {
		query["language"] = regexMatch(f.Language)
	}
	if len(f.Skills) > 0 {
		query["skills"] = bson.M{"$in": f.Skills}
	}
	if len(f.Interests) > 0 {
		query["interests"] = bson.M{"$in": f.Interests}
	}
	return query
}

func buildProjectQuery(f ProjectFilter) bson.M {
	query := bson.M{}
	if f.Title != "" {
		query["title"] = regexMatch(f.Title)
	}
	if f.Type != "" {
		query["type"] = regexMatch(f.Type)
	}
	if f.Location != "" {
		query["location"] = regexMatch(f.Location)
	}
	if len(f.Skills) > 0 {
		query["skills"] = bson.M{"$in": f.Skills}
	}
	if len(f.Tags) > 0 {
		query["tags"] = bson.M{"$in": f.Tags}
	}
	if len(f.Tools) > 0 {
		query["tools"] = bson.M{"$in": f.Tools}
	}
	created := bson.M{}
	if f.CreatedAfter > 0 {
		created["$gte"] = f.CreatedAfter
	}
	if f.CreatedBefore > 0 {
		created["$lte"] = f.CreatedBefore
	}
	if len(created) > 0 {
		query["createdAt"] = created
	}
	return query
}

func (h *Search) Users(c *gin.Context) {
	var filter UserFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cursor, err := h.DB.Users.Find(ctx, buildUserQuery(filter), userListOptions())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed", "code": "INTERNAL"})
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *Search) Projects(c *gin.Context) {
	var filter ProjectFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cursor, err := h.DB.Projects.Find(ctx, buildProjectQuery(filter))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed", "code": "INTERNAL"})
		return
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, projects)
}
