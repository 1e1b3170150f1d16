package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"collabo/models"
)

// ErrInvalidPayload marks a message rejected before persistence:
// missing receiver, empty text, or a self-addressed message.
var ErrInvalidPayload = errors.New("invalid message payload")

// Payload is an inbound message, from the duplex channel or the
// one-shot HTTP endpoint. The sender is never trusted from the
// payload: it comes from the authenticated channel identity.
type Payload struct {
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

// MessageStore is the persistence the router depends on.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg models.Message) error
}

// OfflineNotifier is told about messages stored for a recipient with
// no live channel. Implementations must not block.
type OfflineNotifier interface {
	NotifyOffline(msg models.Message)
}

// Router owns the receive -> persist -> deliver-or-queue pipeline.
// Both message entry points run through Send, so there is exactly one
// delivery policy.
type Router struct {
	registry *Registry
	store    MessageStore
	notifier OfflineNotifier // optional
	log      zerolog.Logger
	now      func() time.Time
}

func NewRouter(registry *Registry, store MessageStore, log zerolog.Logger) *Router {
	return &Router{
		registry: registry,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

// SetOfflineNotifier wires an optional notifier for stored-only
// messages. Call before serving traffic.
func (r *Router) SetOfflineNotifier(n OfflineNotifier) {
	r.notifier = n
}

// Send validates, stamps and persists a message from senderID, then
// delivers it live if the receiver has a registered channel.
//
// Persistence is the source of truth: a failed push after a successful
// write is logged and swallowed, the message stays retrievable via
// history. A persistence failure propagates and nothing is delivered.
func (r *Router) Send(ctx context.Context, senderID string, p Payload) (models.Message, error) {
	if p.ReceiverID == "" || p.Text == "" || p.ReceiverID == senderID {
		return models.Message{}, ErrInvalidPayload
	}

	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: p.ReceiverID,
		Text:       p.Text,
		Timestamp:  r.now().UnixMilli(),
	}

	ch, live := r.registry.Lookup(p.ReceiverID)
	if live {
		msg.Status = models.StatusDelivered
	} else {
		msg.Status = models.StatusSent
	}

	if err := r.store.AppendMessage(ctx, msg); err != nil {
		return models.Message{}, fmt.Errorf("append message: %w", err)
	}

	if live {
		if err := ch.Send(msg); err != nil {
			// Best-effort notification on top of persistence; the
			// receiver picks the message up on the next history fetch.
			r.log.Warn().Err(err).
				Str("receiver", p.ReceiverID).
				Msg("live delivery failed, message persisted")
		}
	} else if r.notifier != nil {
		r.notifier.NotifyOffline(msg)
	}

	return msg, nil
}
