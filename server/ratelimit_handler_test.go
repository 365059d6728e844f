package server

import (
	"testing"

	"github.com/dhcp6kit/dhcp6d/codec"
)

type fakeLimiter struct {
	allow bool
	err   error
}

func (f fakeLimiter) Allow(string) (bool, error) { return f.allow, f.err }
func (f fakeLimiter) Len() int                   { return 0 }

func TestRateLimitGateAllowsWithinLimit(t *testing.T) {
	h := NewRateLimitGate(fakeLimiter{allow: true})
	req := &codec.ClientServerMessage{
		MessageType: codec.MessageTypeSolicit,
		Options:     []codec.Option{&codec.ClientIDOption{DUID: codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})}},
	}
	b := NewBundle(req, true, false)
	if err := h.Pre(b); err != nil {
		t.Fatalf("Pre: %v", err)
	}
}

func TestRateLimitGateBlocksOverLimit(t *testing.T) {
	h := NewRateLimitGate(fakeLimiter{allow: false})
	req := &codec.ClientServerMessage{
		MessageType: codec.MessageTypeSolicit,
		Options:     []codec.Option{&codec.ClientIDOption{DUID: codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})}},
	}
	b := NewBundle(req, true, false)
	err := h.Pre(b)
	if _, ok := err.(*CannotRespondError); !ok {
		t.Fatalf("got %T (%v), want *CannotRespondError", err, err)
	}
}

func TestRateLimitGateSkipsRequestsWithoutClientID(t *testing.T) {
	h := NewRateLimitGate(fakeLimiter{allow: false})
	req := &codec.ClientServerMessage{MessageType: codec.MessageTypeSolicit}
	b := NewBundle(req, true, false)
	if err := h.Pre(b); err != nil {
		t.Fatalf("Pre: %v, want nil since a client with no ClientIDOption cannot be keyed", err)
	}
}

func TestRateLimitFactoryRegistered(t *testing.T) {
	f, ok := HandlerFactories.ByName("rate-limit")
	if !ok {
		t.Fatal("expected a registered \"rate-limit\" handler factory")
	}
	h, err := f()(map[string]interface{}{"max_rate_per_item": float64(5)})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if h.ID() != "rate-limit" {
		t.Fatalf("got handler id %q, want rate-limit", h.ID())
	}
}
