package messaging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"collabo/models"
)

// fakeCollection records calls and replays canned results, standing in
// for the document-collection API backing the store.
type fakeCollection struct {
	findOneResult *mongo.SingleResult
	findDocs      []interface{}
	findErr       error

	updateFilter interface{}
	updateDoc    interface{}
	updateOpts   []*options.UpdateOptions
	updateErr    error

	findFilter interface{}
}

func (f *fakeCollection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	f.findFilter = filter
	return f.findOneResult
}

func (f *fakeCollection) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	f.findFilter = filter
	if f.findErr != nil {
		return nil, f.findErr
	}
	return mongo.NewCursorFromDocuments(f.findDocs, nil, nil)
}

func (f *fakeCollection) UpdateOne(_ context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.updateFilter = filter
	f.updateDoc = update
	f.updateOpts = opts
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeCollection) InsertOne(_ context.Context, _ interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	return &mongo.InsertOneResult{}, nil
}

func TestAppendMessageUpsertsByParticipantPair(t *testing.T) {
	req := require.New(t)
	coll := &fakeCollection{}
	store := NewStore(coll)

	msg := models.Message{
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "hi",
		Status:     models.StatusSent,
		Timestamp:  1700000000000,
	}
	req.NoError(store.AppendMessage(context.Background(), msg))

	// Single atomic operation with upsert enabled: no read-then-write.
	req.Len(coll.updateOpts, 1)
	req.NotNil(coll.updateOpts[0].Upsert)
	req.True(*coll.updateOpts[0].Upsert)

	filter, ok := coll.updateFilter.(bson.M)
	req.True(ok)
	pair, ok := filter["participants"].(bson.M)
	req.True(ok)
	req.ElementsMatch([]string{"alice", "bob"}, pair["$all"])
	req.Equal(2, pair["$size"])

	update, ok := coll.updateDoc.(bson.M)
	req.True(ok)

	push, ok := update["$push"].(bson.M)
	req.True(ok)
	req.Equal(msg, push["messages"])

	onInsert, ok := update["$setOnInsert"].(bson.M)
	req.True(ok)
	req.ElementsMatch([]string{"alice", "bob"}, onInsert["participants"])
	req.Equal(msg.Timestamp, onInsert["createdAt"])
	id, ok := onInsert["_id"].(string)
	req.True(ok)
	req.True(strings.HasPrefix(id, "conv"))
}

func TestConversationFoundAndMissing(t *testing.T) {
	req := require.New(t)

	doc := models.Conversation{
		ID:           "conv123",
		Participants: []string{"alice", "bob"},
		Messages: []models.Message{
			{SenderID: "alice", ReceiverID: "bob", Text: "hi", Status: models.StatusSent, Timestamp: 1},
		},
		CreatedAt: 1,
	}
	coll := &fakeCollection{findOneResult: mongo.NewSingleResultFromDocument(doc, nil, nil)}
	store := NewStore(coll)

	conv, err := store.Conversation(context.Background(), "alice", "bob")
	req.NoError(err)
	req.NotNil(conv)
	req.Equal("conv123", conv.ID)
	req.Len(conv.Messages, 1)

	// Exact-pair filter, unordered.
	filter := coll.findFilter.(bson.M)
	pair := filter["participants"].(bson.M)
	req.ElementsMatch([]string{"alice", "bob"}, pair["$all"])

	missing := &fakeCollection{findOneResult: mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)}
	conv, err = NewStore(missing).Conversation(context.Background(), "alice", "carol")
	req.NoError(err)
	req.Nil(conv)
}

func TestHistoryReturnsAllConversationsForUser(t *testing.T) {
	req := require.New(t)
	coll := &fakeCollection{
		findDocs: []interface{}{
			models.Conversation{ID: "conv1", Participants: []string{"alice", "bob"}},
			models.Conversation{ID: "conv2", Participants: []string{"carol", "alice"}},
		},
	}
	store := NewStore(coll)

	convs, err := store.History(context.Background(), "alice")
	req.NoError(err)
	req.Len(convs, 2)

	filter := coll.findFilter.(bson.M)
	req.Equal("alice", filter["participants"])
}
