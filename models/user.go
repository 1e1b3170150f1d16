package models

// User is the account document. PasswordHash never leaves the server:
// it is excluded from JSON and stripped by projection on reads.
type User struct {
	ID           string   `bson:"_id" json:"userId"`
	Name         string   `bson:"name" json:"name"`
	Email        string   `bson:"email" json:"email"`
	PasswordHash string   `bson:"password,omitempty" json:"-"`
	Bio          string   `bson:"bio,omitempty" json:"bio,omitempty"`
	Avatar       string   `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Skills       []string `bson:"skills" json:"skills"`
	Interests    []string `bson:"interests" json:"interests"`
	Friends      []string `bson:"friends" json:"friends"`
	Collabees    []string `bson:"collabees" json:"collabees"`
	Projects     []string `bson:"projects" json:"projects"`
	Followers    []string `bson:"followers" json:"followers"`
	Following    []string `bson:"following" json:"following"`
	Language     string   `bson:"language,omitempty" json:"language,omitempty"`
	Location     string   `bson:"location,omitempty" json:"location,omitempty"`
	Timezone     string   `bson:"timezone,omitempty" json:"timezone,omitempty"`
	CreatedAt    int64    `bson:"createdAt" json:"createdAt"`
	UpdatedAt    int64    `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
