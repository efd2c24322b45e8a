package deferred

import (
	"context"
	"net/http"
	"time"

	"analytics-service/models"
)

// CookieOptions configure the cookies written by CookieStore.
type CookieOptions struct {
	Prefix string
	Path   string
	Domain string
	Secure bool
	TTL    time.Duration
}

type pending struct {
	payload []byte
	cleared bool
}

// CookieStore keeps each deferred event in its own signed cookie on the
// visitor's browser. It is bound to one request: reads come from the incoming
// cookies, writes go out as Set-Cookie headers, and an overlay records what
// this request already wrote or consumed.
type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	codec   *TokenCodec
	opts    CookieOptions
	overlay map[models.EventName]pending
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, codec *TokenCodec, opts CookieOptions) *CookieStore {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &CookieStore{
		w:       w,
		r:       r,
		codec:   codec,
		opts:    opts,
		overlay: make(map[models.EventName]pending),
	}
}

func (s *CookieStore) cookieName(name models.EventName) string {
	return s.opts.Prefix + string(name)
}

func (s *CookieStore) Set(_ context.Context, name models.EventName, payload []byte) {
	token, err := s.codec.Encode(name, payload, s.opts.TTL)
	if err != nil {
		return
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.cookieName(name),
		Value:    token,
		Path:     s.opts.Path,
		Domain:   s.opts.Domain,
		MaxAge:   int(s.opts.TTL / time.Second),
		Expires:  time.Now().Add(s.opts.TTL),
		Secure:   s.opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.overlay[name] = pending{payload: payload}
}

func (s *CookieStore) GetAndClear(_ context.Context, name models.EventName) ([]byte, bool) {
	var payload []byte
	if p, ok := s.overlay[name]; ok {
		if p.cleared {
			return nil, false
		}
		payload = p.payload
	} else {
		c, err := s.r.Cookie(s.cookieName(name))
		if err != nil || c.Value == "" {
			return nil, false
		}
		payload, err = s.codec.Decode(name, c.Value)
		if err != nil {
			s.expire(name)
			return nil, false
		}
	}
	s.expire(name)
	return payload, true
}

func (s *CookieStore) expire(name models.EventName) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.cookieName(name),
		Value:    "",
		Path:     s.opts.Path,
		Domain:   s.opts.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   s.opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.overlay[name] = pending{cleared: true}
}

var _ Store = (*CookieStore)(nil)
