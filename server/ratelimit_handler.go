package server

import (
	"encoding/hex"

	"github.com/dhcp6kit/dhcp6d/codec"
	"github.com/dhcp6kit/dhcp6d/internal/ratelimit"
)

// rateLimitGate is a Pre-phase handler that drops requests from a client
// whose request rate exceeds the configured limiter. A client with no
// ClientIDOption is never throttled, since it cannot be keyed.
type rateLimitGate struct {
	baseHandler
	limiter ratelimit.Limiter
}

// NewRateLimitGate constructs the rate-limit gate wired to limiter.
func NewRateLimitGate(limiter ratelimit.Limiter) Handler {
	return &rateLimitGate{baseHandler{id: "rate-limit"}, limiter}
}

func (h *rateLimitGate) Pre(b *Bundle) error {
	if b.Request == nil {
		return nil
	}
	clientID, ok := b.Request.GetOption(codec.ClassClientIDOption).(*codec.ClientIDOption)
	if !ok || clientID.DUID == nil {
		return nil
	}
	raw, err := clientID.DUID.Save()
	if err != nil {
		return nil
	}
	allowed, err := h.limiter.Allow(hex.EncodeToString(raw))
	if err != nil || !allowed {
		return &CannotRespondError{Reason: "client exceeded request rate"}
	}
	return nil
}

func init() {
	registerHandlerFactory("rate-limit", func(cfg map[string]interface{}) (Handler, error) {
		capacity := intFromConfig(cfg, "capacity", 4096)
		cacheRate := intFromConfig(cfg, "cache_rate", 0)
		maxRatePerItem := intFromConfig(cfg, "max_rate_per_item", 0)
		limiter, err := ratelimit.New(capacity, cacheRate, maxRatePerItem)
		if err != nil {
			return nil, err
		}
		return NewRateLimitGate(limiter), nil
	})
}

func intFromConfig(cfg map[string]interface{}, key string, def int) int {
	v, ok := cfg[key].(float64)
	if !ok {
		return def
	}
	return int(v)
}
