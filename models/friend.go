package models

type FriendRequest struct {
	ID          string `bson:"_id" json:"requestId"`
	SenderID    string `bson:"senderId" json:"senderId"`
	RecipientID string `bson:"recipientId" json:"recipientId"`
	Status      string `bson:"status" json:"status"`
	CreatedAt   int64  `bson:"createdAt" json:"createdAt"`
}

// Friendship is written once a request is accepted and never updated.
type Friendship struct {
	ID        string `bson:"_id" json:"friendshipId"`
	User1ID   string `bson:"user1Id" json:"user1Id"`
	User2ID   string `bson:"user2Id" json:"user2Id"`
	CreatedAt int64  `bson:"createdAt" json:"createdAt"`
}

// Friend is the API view of a friendship from one user's side.
type Friend struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}
