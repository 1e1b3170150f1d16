package models

// Review states shared by applications, invitations and friend requests.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Application is a user asking to join a project.
type Application struct {
	ID          string `bson:"_id" json:"applicationId"`
	ProjectID   string `bson:"projectId" json:"projectId"`
	ApplicantID string `bson:"applicantId" json:"applicantId"`
	Status      string `bson:"status" json:"status"`
	CreatedAt   int64  `bson:"createdAt" json:"createdAt"`
}

// Invitation is a project owner asking a user to join.
type Invitation struct {
	ID        string `bson:"_id" json:"invitationId"`
	ProjectID string `bson:"projectId" json:"projectId"`
	InviterID string `bson:"inviterId" json:"inviterId"`
	InviteeID string `bson:"inviteeId" json:"inviteeId"`
	Status    string `bson:"status" json:"status"`
	CreatedAt int64  `bson:"createdAt" json:"createdAt"`
}
