package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"collabo/database"
	"collabo/middleware"
	"collabo/models"
)

type Users struct {
	DB            *database.DB
	CloudinaryURL string
	Log           zerolog.Logger
}

// UpdateUserRequest carries profile changes. Scalars replace the stored
// value; list fields are merged with $addToSet so repeated updates
// never duplicate entries.
type UpdateUserRequest struct {
	Name      *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Bio       *string  `json:"bio"`
	Language  *string  `json:"language"`
	Location  *string  `json:"location"`
	Timezone  *string  `json:"timezone"`
	Skills    []string `json:"skills"`
	Interests []string `json:"interests"`
	Following []string `json:"following"`
}

func (h *Users) GetProfile(c *gin.Context) {
	userID := c.Param("id")

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var user models.User
	err := h.DB.Users.FindOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"password": 0}),
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "code": "NOT_FOUND"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Users) UpdateProfile(c *gin.Context) {
	userID := c.Param("id")
	if c.GetString(middleware.ContextUserID) != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied", "code": "PERMISSION_DENIED"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return
	}

	set := bson.M{"updatedAt": time.Now().UnixMilli()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Bio != nil {
		set["bio"] = *req.Bio
	}
	if req.Language != nil {
		set["language"] = *req.Language
	}
	if req.Location != nil {
		set["location"] = *req.Location
	}
	if req.Timezone != nil {
		set["timezone"] = *req.Timezone
	}

	addToSet := bson.M{}
	if len(req.Skills) > 0 {
		addToSet["skills"] = bson.M{"$each": req.Skills}
	}
	if len(req.Interests) > 0 {
		addToSet["interests"] = bson.M{"$each": req.Interests}
	}
	if len(req.Following) > 0 {
		addToSet["following"] = bson.M{"$each": req.Following}
	}

	update := bson.M{"$set": set}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	result, err := h.DB.Users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		h.Log.Error().Err(err).Str("user", userID).Msg("profile update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile", "code": "INTERNAL"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// UploadAvatar stores the uploaded image on cloudinary and records the
// resulting URL on the caller's profile.
func (h *Users) UploadAvatar(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	file, _, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No avatar file provided", "code": "BAD_REQUEST"})
		return
	}
	defer file.Close()

	cld, err := cloudinary.NewFromURL(h.CloudinaryURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cloudinary configuration error", "code": "INTERNAL"})
		return
	}

	uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         "collabo/avatars",
		PublicID:       userID,
		Transformation: "c_limit,w_400,h_400,q_auto",
	})
	if err != nil {
		h.Log.Error().Err(err).Msg("avatar upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload avatar", "code": "INTERNAL"})
		return
	}

	_, err = h.DB.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"avatar": uploadResult.SecureURL, "updatedAt": time.Now().UnixMilli()},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save avatar", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": uploadResult.SecureURL})
}
