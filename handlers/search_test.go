package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildUserQueryEmptyFilterMatchesAll(t *testing.T) {
	require.Equal(t, bson.M{}, buildUserQuery(UserFilter{}))
}

func TestBuildUserQueryStringsMatchCaseInsensitive(t *testing.T) {
	req := require.New(t)

	query := buildUserQuery(UserFilter{Name: "ada", Location: "berlin"})

	name, ok := query["name"].(bson.M)
	req.True(ok)
	regex, ok := name["$regex"].(primitive.Regex)
	req.True(ok)
	req.Equal("ada", regex.Pattern)
	req.Equal("i", regex.Options)

	req.Contains(query, "location")
	req.NotContains(query, "language")
	req.NotContains(query, "skills")
}

func TestBuildUserQueryListsUseAnyElementMatch(t *testing.T) {
	req := require.New(t)

	query := buildUserQuery(UserFilter{
		Skills:    []string{"go", "rust"},
		Interests: []string{"music"},
	})

	req.Equal(bson.M{"$in": []string{"go", "rust"}}, query["skills"])
	req.Equal(bson.M{"$in": []string{"music"}}, query["interests"])
}

func TestBuildProjectQueryDateRange(t *testing.T) {
	req := require.New(t)

	query := buildProjectQuery(ProjectFilter{
		CreatedAfter:  1000,
		CreatedBefore: 2000,
	})
	req.Equal(bson.M{"$gte": int64(1000), "$lte": int64(2000)}, query["createdAt"])

	query = buildProjectQuery(ProjectFilter{CreatedAfter: 1000})
	req.Equal(bson.M{"$gte": int64(1000)}, query["createdAt"])

	query = buildProjectQuery(ProjectFilter{})
	req.NotContains(query, "createdAt")
}

func TestBuildProjectQueryCombinesFields(t *testing.T) {
	req := require.New(t)

	query := buildProjectQuery(ProjectFilter{
		Title: "synth",
		Type:  "music",
		Tags:  []string{"audio"},
		Tools: []string{"ableton"},
	})

	req.Len(query, 4)
	req.Equal(bson.M{"$in": []string{"audio"}}, query["tags"])
	req.Equal(bson.M{"$in": []string{"ableton"}}, query["tools"])
}
