package models

type Project struct {
	ID            string   `bson:"_id" json:"projectId"`
	Title         string   `bson:"title" json:"title"`
	Description   string   `bson:"description,omitempty" json:"description,omitempty"`
	CreatedBy     string   `bson:"createdBy" json:"createdBy"`
	Deadline      string   `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Type          string   `bson:"type,omitempty" json:"type,omitempty"`
	Skills        []string `bson:"skills" json:"skills"`
	Tags          []string `bson:"tags" json:"tags"`
	Collaborators []string `bson:"collaborators" json:"collaborators"`
	Followers     []string `bson:"followers" json:"followers"`
	Tools         []string `bson:"tools" json:"tools"`
	Location      string   `bson:"location,omitempty" json:"location,omitempty"`
	CreatedAt     int64    `bson:"createdAt" json:"createdAt"`
	UpdatedAt     int64    `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
