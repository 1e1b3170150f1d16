package models

// Message status values. A message is "sent" once persisted and
// "delivered" when the receiver had a live channel at send time.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
)

// Message is immutable once created. Owned by exactly one Conversation.
type Message struct {
	SenderID   string `bson:"senderId" json:"senderId"`
	ReceiverID string `bson:"receiverId" json:"receiverId"`
	Text       string `bson:"text" json:"text"`
	Status     string `bson:"status" json:"status"`
	Timestamp  int64  `bson:"timestamp" json:"timestamp"` // unix millis, server-assigned
}

// Conversation aggregates every message exchanged between exactly two
// users. At most one document exists per unordered participant pair.
type Conversation struct {
	ID           string    `bson:"_id" json:"conversationId"`
	Participants []string  `bson:"participants" json:"participants"`
	Messages     []Message `bson:"messages" json:"messages"`
	CreatedAt    int64     `bson:"createdAt" json:"createdAt"`
}

// Partner returns the other participant from userID's point of view.
func (c *Conversation) Partner(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
