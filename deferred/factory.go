package deferred

import (
	"fmt"
	"net/http"
	"strings"
)

// Mode selects where deferred events are kept.
type Mode string

const (
	ModeCookie Mode = "cookie"
	ModeRedis  Mode = "redis"
	ModeMemory Mode = "memory"
	ModeNone   Mode = "none"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeCookie, ModeRedis, ModeMemory, ModeNone:
		return m, nil
	case "":
		return ModeCookie, nil
	default:
		return "", fmt.Errorf("unknown deferred store mode %q", s)
	}
}

// Factory builds the store for one visitor request.
type Factory struct {
	mode    Mode
	codec   *TokenCodec
	cookie  CookieOptions
	backend Backend
}

func NewCookieFactory(codec *TokenCodec, opts CookieOptions) *Factory {
	return &Factory{mode: ModeCookie, codec: codec, cookie: opts}
}

// NewBackendFactory serves visitors from a shared backend. mode is recorded
// for reporting only.
func NewBackendFactory(mode Mode, backend Backend) *Factory {
	return &Factory{mode: mode, backend: backend}
}

func NewNopFactory() *Factory {
	return &Factory{mode: ModeNone}
}

func (f *Factory) Mode() Mode {
	return f.mode
}

// ForRequest returns the store for the visitor making r. Backend modes need
// a visitor id; without one the visitor gets a NopStore.
func (f *Factory) ForRequest(w http.ResponseWriter, r *http.Request, visitorID string) Store {
	switch f.mode {
	case ModeCookie:
		return NewCookieStore(w, r, f.codec, f.cookie)
	case ModeRedis, ModeMemory:
		if f.backend == nil || visitorID == "" {
			return NopStore{}
		}
		return f.backend.ForVisitor(visitorID)
	default:
		return NopStore{}
	}
}
