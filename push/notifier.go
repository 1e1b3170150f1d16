// Package push notifies offline recipients about stored messages:
// a notification document for the in-app feed plus, when the user
// registered a browser subscription, a web push.
package push

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"collabo/database"
	"collabo/models"
)

type Notifier struct {
	db         *database.DB
	publicKey  string
	privateKey string
	subscriber string
	log        zerolog.Logger
}

func NewNotifier(db *database.DB, publicKey, privateKey, subscriber string, log zerolog.Logger) *Notifier {
	return &Notifier{
		db:         db,
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		log:        log,
	}
}

// NotifyOffline implements messaging.OfflineNotifier. It returns
// immediately; the actual work happens in a goroutine so the message
// router never blocks on notification I/O.
func (n *Notifier) NotifyOffline(msg models.Message) {
	go n.notify(msg)
}

func (n *Notifier) notify(msg models.Message) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error().Interface("panic", r).Msg("panic in offline notifier")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notification := models.Notification{
		ID:        models.NewID("notif"),
		UserID:    msg.ReceiverID,
		Type:      models.NotifyMessage,
		Content:   msg.Text,
		CreatedAt: time.Now().UnixMilli(),
	}
	if _, err := n.db.Notifications.InsertOne(ctx, notification); err != nil {
		n.log.Warn().Err(err).Msg("failed to write message notification")
	}

	if n.privateKey == "" {
		return
	}

	var sub models.PushSubscription
	err := n.db.PushSubs.FindOne(ctx, bson.M{"userId": msg.ReceiverID}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return
	}
	if err != nil {
		n.log.Warn().Err(err).Msg("failed to load push subscription")
		return
	}

	title := "New message"
	var sender models.User
	if err := n.db.Users.FindOne(ctx, bson.M{"_id": msg.SenderID}).Decode(&sender); err == nil && sender.Name != "" {
		title = sender.Name + " sent you a message"
	}

	payload, _ := json.Marshal(map[string]string{
		"title": title,
		"body":  msg.Text,
	})

	resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
		Subscriber:      n.subscriber,
		VAPIDPublicKey:  n.publicKey,
		VAPIDPrivateKey: n.privateKey,
		TTL:             30,
	})
	if err != nil {
		n.log.Warn().Err(err).Str("user", msg.ReceiverID).Msg("web push failed")
		return
	}
	resp.Body.Close()
}
