package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"collabo/models"
)

type memStore struct {
	appended []models.Message
	err      error
}

func (s *memStore) AppendMessage(_ context.Context, msg models.Message) error {
	if s.err != nil {
		return s.err
	}
	s.appended = append(s.appended, msg)
	return nil
}

type memNotifier struct {
	notified []models.Message
}

func (n *memNotifier) NotifyOffline(msg models.Message) {
	n.notified = append(n.notified, msg)
}

func newTestRouter(store MessageStore) (*Router, *Registry) {
	registry := NewRegistry()
	router := NewRouter(registry, store, zerolog.Nop())
	router.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return router, registry
}

func TestSendDeliversToLiveReceiver(t *testing.T) {
	req := require.New(t)
	store := &memStore{}
	router, registry := newTestRouter(store)

	bob := &stubChannel{}
	registry.Register("bob", bob)

	msg, err := router.Send(context.Background(), "alice", Payload{ReceiverID: "bob", Text: "hi"})
	req.NoError(err)

	req.Equal(models.StatusDelivered, msg.Status)
	req.Equal("alice", msg.SenderID)
	req.Equal(int64(1700000000000), msg.Timestamp)

	req.Len(store.appended, 1)
	req.Equal(models.StatusDelivered, store.appended[0].Status)

	req.Len(bob.sent, 1)
	req.Equal("hi", bob.sent[0].Text)
}

func TestSendQueuesForOfflineReceiver(t *testing.T) {
	req := require.New(t)
	store := &memStore{}
	router, _ := newTestRouter(store)

	notifier := &memNotifier{}
	router.SetOfflineNotifier(notifier)

	msg, err := router.Send(context.Background(), "alice", Payload{ReceiverID: "bob", Text: "hi"})
	req.NoError(err)

	req.Equal(models.StatusSent, msg.Status)
	req.Len(store.appended, 1)
	req.Equal(models.StatusSent, store.appended[0].Status)
	req.Len(notifier.notified, 1)
}

func TestSendRejectsInvalidPayloads(t *testing.T) {
	store := &memStore{}
	router, _ := newTestRouter(store)

	tests := []struct {
		name    string
		payload Payload
	}{
		{"missing receiver", Payload{Text: "hi"}},
		{"empty text", Payload{ReceiverID: "bob"}},
		{"self addressed", Payload{ReceiverID: "alice", Text: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := router.Send(context.Background(), "alice", tt.payload)
			req.ErrorIs(err, ErrInvalidPayload)
			// Rejected payloads are never persisted.
			req.Empty(store.appended)
		})
	}
}

func TestSendPropagatesPersistenceFailure(t *testing.T) {
	req := require.New(t)
	store := &memStore{err: errors.New("mongo down")}
	router, registry := newTestRouter(store)

	bob := &stubChannel{}
	registry.Register("bob", bob)

	_, err := router.Send(context.Background(), "alice", Payload{ReceiverID: "bob", Text: "hi"})
	req.Error(err)
	req.NotErrorIs(err, ErrInvalidPayload)

	// Nothing was pushed: persistence comes first.
	req.Empty(bob.sent)
}

func TestSendSwallowsDeliveryFailure(t *testing.T) {
	req := require.New(t)
	store := &memStore{}
	router, registry := newTestRouter(store)

	registry.Register("bob", &stubChannel{err: errors.New("write: broken pipe")})

	msg, err := router.Send(context.Background(), "alice", Payload{ReceiverID: "bob", Text: "hi"})
	req.NoError(err)

	// The message is persisted as delivered even though the push
	// failed; it remains retrievable via history.
	req.Equal(models.StatusDelivered, msg.Status)
	req.Len(store.appended, 1)
}

func TestSendPreservesOrderPerSender(t *testing.T) {
	req := require.New(t)
	store := &memStore{}
	router, _ := newTestRouter(store)

	for _, text := range []string{"one", "two", "three"} {
		_, err := router.Send(context.Background(), "alice", Payload{ReceiverID: "bob", Text: text})
		req.NoError(err)
	}

	req.Len(store.appended, 3)
	req.Equal("one", store.appended[0].Text)
	req.Equal("two", store.appended[1].Text)
	req.Equal("three", store.appended[2].Text)
}
