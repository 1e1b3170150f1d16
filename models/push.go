package models

import "github.com/SherClockHolmes/webpush-go"

// PushSubscription stores a browser push endpoint for a user.
type PushSubscription struct {
	ID     string               `bson:"_id" json:"subscriptionId"`
	UserID string               `bson:"userId" json:"userId"`
	Sub    webpush.Subscription `bson:"sub" json:"sub"`
}
