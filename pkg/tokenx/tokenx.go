// Package tokenx issues and verifies HMAC signed tokens in isolated
// namespaces. Each namespace has its own secret, kind tag and payload type,
// so a token minted in one namespace never verifies in another.
package tokenx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed = errors.New("tokenx: malformed token")
	ErrInvalid   = errors.New("tokenx: invalid token")
	ErrExpired   = errors.New("tokenx: token expired")
)

// Claims is the wire form of a namespaced token.
type Claims[P any] struct {
	jwt.RegisteredClaims

	// Kind names the namespace that issued the token.
	Kind string `json:"knd"`

	// IssuedMillis is the issue time in Unix milliseconds. The registered
	// iat claim only carries whole seconds.
	IssuedMillis int64 `json:"iatms,omitempty"`

	Payload P `json:"p"`
}

// Namespace issues and verifies tokens carrying a payload of type P.
type Namespace[P any] struct {
	kind   string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Namespace.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL bounds token validity. Zero leaves tokens valid forever.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithClock overrides the time source used for issue and verify.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds a namespace. The secret must not be empty.
func New[P any](kind string, secret []byte, opts ...Option) (*Namespace[P], error) {
	if kind == "" {
		return nil, errors.New("tokenx: namespace kind is required")
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("tokenx: empty secret for %q namespace", kind)
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ttl < 0 {
		return nil, fmt.Errorf("tokenx: negative ttl for %q namespace", kind)
	}

	return &Namespace[P]{
		kind:   kind,
		secret: append([]byte(nil), secret...),
		ttl:    o.ttl,
		now:    o.now,
	}, nil
}

// Kind returns the namespace tag.
func (n *Namespace[P]) Kind() string { return n.kind }

// TTL returns the configured validity window, zero when unbounded.
func (n *Namespace[P]) TTL() time.Duration { return n.ttl }

// Issue signs payload into a compact token.
func (n *Namespace[P]) Issue(payload P) (string, error) {
	now := n.now().UTC()

	claims := Claims[P]{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
		Kind:         n.kind,
		IssuedMillis: now.UnixMilli(),
		Payload:      payload,
	}
	if n.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(n.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(n.secret)
	if err != nil {
		return "", fmt.Errorf("tokenx: sign %s token: %w", n.kind, err)
	}
	return signed, nil
}

// Verify checks the signature, kind and age of token and returns its payload.
// Expiry is derived from the issue time and the namespace TTL, so shortening
// the TTL also shortens the life of tokens already handed out.
func (n *Namespace[P]) Verify(token string) (P, error) {
	var zero P

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &Claims[P]{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return n.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return zero, fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		return zero, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if claims.Kind != n.kind {
		return zero, fmt.Errorf("%w: kind %q, want %q", ErrInvalid, claims.Kind, n.kind)
	}

	if n.ttl > 0 {
		issued, ok := claims.issuedAt()
		if !ok {
			return zero, fmt.Errorf("%w: missing iat", ErrInvalid)
		}
		if !n.now().Before(issued.Add(n.ttl)) {
			return zero, ErrExpired
		}
	}

	return claims.Payload, nil
}

// issuedAt prefers the millisecond stamp and falls back to iat for tokens
// minted without one.
func (c *Claims[P]) issuedAt() (time.Time, bool) {
	if c.IssuedMillis > 0 {
		return time.UnixMilli(c.IssuedMillis), true
	}
	if c.IssuedAt == nil {
		return time.Time{}, false
	}
	return c.IssuedAt.Time, true
}
