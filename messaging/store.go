package messaging

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"collabo/models"
)

// Collection is the slice of the mongo collection API the store needs.
// *mongo.Collection satisfies it; tests substitute a fake.
type Collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// Store persists conversations keyed by the unordered participant pair.
type Store struct {
	conversations Collection
}

func NewStore(conversations Collection) *Store {
	return &Store{conversations: conversations}
}

// pairFilter matches the one conversation whose participants are
// exactly the unordered pair {a, b}.
func pairFilter(a, b string) bson.M {
	return bson.M{"participants": bson.M{
		"$all":  []string{a, b},
		"$size": 2,
	}}
}

// AppendMessage pushes msg onto the conversation between sender and
// receiver, creating the conversation if it is the first contact.
// The find-or-create-then-append sequence runs as a single upsert so
// two concurrent first messages cannot create two conversations.
func (s *Store) AppendMessage(ctx context.Context, msg models.Message) error {
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$setOnInsert": bson.M{
			"_id":          models.NewID("conv"),
			"participants": []string{msg.SenderID, msg.ReceiverID},
			"createdAt":    msg.Timestamp,
		},
	}

	_, err := s.conversations.UpdateOne(ctx,
		pairFilter(msg.SenderID, msg.ReceiverID),
		update,
		options.Update().SetUpsert(true),
	)
	return err
}

// Conversation returns the conversation between the two users, or nil
// if they never exchanged a message.
func (s *Store) Conversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.conversations.FindOne(ctx, pairFilter(userA, userB)).Decode(&conv)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// History returns every conversation userID participates in. No
// pagination: callers may layer it on later.
func (s *Store) History(ctx context.Context, userID string) ([]models.Conversation, error) {
	cursor, err := s.conversations.Find(ctx, bson.M{"participants": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var convs []models.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}
