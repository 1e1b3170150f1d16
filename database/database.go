package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB bundles the mongo client with the named collections the app uses.
// It is constructed once at startup and injected, never held in a
// package-level global.
type DB struct {
	Client *mongo.Client

	Users          *mongo.Collection
	Projects       *mongo.Collection
	Applications   *mongo.Collection
	Invitations    *mongo.Collection
	FriendRequests *mongo.Collection
	Friendships    *mongo.Collection
	Conversations  *mongo.Collection
	Notifications  *mongo.Collection
	PushSubs       *mongo.Collection
}

// Connect dials mongo, pings it, and resolves the collections.
func Connect(ctx context.Context, uri, name string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(name)
	return &DB{
		Client:         client,
		Users:          db.Collection("users"),
		Projects:       db.Collection("projects"),
		Applications:   db.Collection("applications"),
		Invitations:    db.Collection("invitations"),
		FriendRequests: db.Collection("friend_requests"),
		Friendships:    db.Collection("friendships"),
		Conversations:  db.Collection("conversations"),
		Notifications:  db.Collection("notifications"),
		PushSubs:       db.Collection("push_subscriptions"),
	}, nil
}

// Close disconnects the underlying client.
func (d *DB) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return d.Client.Disconnect(ctx)
}
