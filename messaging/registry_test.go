package messaging

import (
	"testing"

	"github.com/stretchr/testify/require"

	"collabo/models"
)

type stubChannel struct {
	sent   []models.Message
	err    error
	closed bool
}

func (c *stubChannel) Send(msg models.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *stubChannel) Close() error {
	c.closed = true
	return nil
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	_, ok := r.Lookup("alice")
	req.False(ok)

	ch := &stubChannel{}
	old := r.Register("alice", ch)
	req.Nil(old)

	got, ok := r.Lookup("alice")
	req.True(ok)
	req.Same(ch, got)
	req.Equal(1, r.Count())
}

func TestRegistryOverwriteReturnsPrevious(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	first := &stubChannel{}
	second := &stubChannel{}

	req.Nil(r.Register("alice", first))
	old := r.Register("alice", second)
	req.Same(first, old)

	got, ok := r.Lookup("alice")
	req.True(ok)
	req.Same(second, got)
	req.Equal(1, r.Count())
}

func TestRegistryUnregisterIdempotent(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	// No connection registered: must be a no-op, never an error.
	r.Unregister("ghost", nil)
	r.Unregister("ghost", &stubChannel{})

	ch := &stubChannel{}
	r.Register("alice", ch)
	r.Unregister("alice", ch)
	_, ok := r.Lookup("alice")
	req.False(ok)

	r.Unregister("alice", ch)
	req.Equal(0, r.Count())
}

func TestRegistryUnregisterStaleChannelKeepsSuccessor(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	first := &stubChannel{}
	second := &stubChannel{}
	r.Register("alice", first)
	r.Register("alice", second)

	// The displaced connection tears down late; the fresh one stays.
	r.Unregister("alice", first)

	got, ok := r.Lookup("alice")
	req.True(ok)
	req.Same(second, got)
}

func TestRegistryUnregisterNilChannelRemovesEntry(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	r.Register("alice", &stubChannel{})
	r.Unregister("alice", nil)

	_, ok := r.Lookup("alice")
	req.False(ok)
}
