package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "postboard"

	// TokenTTL is the fixed lifetime of an issued token. Tokens are
	// stateless; a claim stays valid until expiry even if the underlying
	// record changes, so this bounds the staleness window.
	TokenTTL = 72 * time.Hour
)

// Identity is the minimal authenticated-user data embedded in a bearer
// token. It never carries the password hash.
type Identity struct {
	UserID   string
	Username string
	Email    string
	Age      int
	Admin    bool
}

// Claims is the JWT payload: the identity fields plus the registered set.
// The user id travels in the subject claim.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Admin    bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies bearer tokens with a process-wide HS256 secret.
// The secret is loaded once at startup and never rotated at runtime.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// TokenOption configures Tokens.
type TokenOption func(*Tokens)

// WithClock overrides the time source. Only useful in tests.
func WithClock(fn func() time.Time) TokenOption {
	return func(t *Tokens) {
		if fn != nil {
			t.now = fn
		}
	}
}

// NewTokens builds the token signer/verifier. An empty secret returns
// ErrMissingSecret; callers treat that as fatal at startup.
func NewTokens(secret string, opts ...TokenOption) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	t := &Tokens{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Issue signs id into a bearer token expiring TokenTTL from now.
func (t *Tokens) Issue(id Identity) (string, time.Time, error) {
	now := t.now().UTC()
	expiresAt := now.Add(TokenTTL)
	claims := Claims{
		Username: id.Username,
		Email:    id.Email,
		Age:      id.Age,
		Admin:    id.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and recovers the identity unchanged.
// There is no store re-fetch here; the claim is trusted as signed.
func (t *Tokens) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(t.now))
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		Age:      claims.Age,
		Admin:    claims.Admin,
	}, nil
}
