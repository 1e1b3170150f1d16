package models

// Notification types written by the collaboration handlers and the
// offline message notifier.
const (
	NotifyFriendRequest = "friend_request"
	NotifyInvitation    = "invitation"
	NotifyApplication   = "application"
	NotifyMessage       = "message"
)

type Notification struct {
	ID        string `bson:"_id" json:"notificationId"`
	UserID    string `bson:"userId" json:"userId"`
	Type      string `bson:"type" json:"type"`
	Content   string `bson:"content" json:"content"`
	IsRead    bool   `bson:"isRead" json:"isRead"`
	CreatedAt int64  `bson:"createdAt" json:"createdAt"`
}
