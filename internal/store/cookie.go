package store

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Cookie names of the browser-held state.
const (
	CartCookie     = "local_cart"
	WishlistCookie = "local_wishlist"
)

// Browsers drop cookies above 4096 bytes including name and attributes.
const maxCookieValue = 3800

// ErrStateTooLarge is returned when the state no longer fits in a cookie.
var ErrStateTooLarge = errors.New("local state too large for a cookie")

type stateClaims[E any] struct {
	Entries []E `json:"entries"`
	jwt.RegisteredClaims
}

// CookieCodec signs browser-held state as HS256 tokens so that clients
// cannot forge entries.
type CookieCodec struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewCookieCodec creates a codec. secure marks cookies HTTPS-only.
func NewCookieCodec(secret string, ttl time.Duration, secure bool) *CookieCodec {
	return &CookieCodec{secret: []byte(secret), ttl: ttl, secure: secure, now: time.Now}
}

func encode[E any](c *CookieCodec, name string, entries []E) (*http.Cookie, error) {
	now := c.now()
	claims := stateClaims[E]{
		Entries: entries,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("sign %s cookie: %w", name, err)
	}
	if len(value) > maxCookieValue {
		return nil, ErrStateTooLarge
	}
	return c.cookie(name, value, now.Add(c.ttl), int(c.ttl.Seconds())), nil
}

// decode returns (nil, nil) when the cookie is absent and an error when it
// is present but unusable.
func decode[E any](c *CookieCodec, r *http.Request, name string) ([]E, error) {
	ck, err := r.Cookie(name)
	if err != nil || ck.Value == "" {
		return nil, nil
	}

	claims := &stateClaims[E]{}
	_, err = jwt.ParseWithClaims(ck.Value, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(name),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("verify %s cookie: %w", name, err)
	}
	return claims.Entries, nil
}

func (c *CookieCodec) expired(name string) *http.Cookie {
	return c.cookie(name, "", time.Unix(0, 0), -1)
}

func (c *CookieCodec) cookie(name, value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
