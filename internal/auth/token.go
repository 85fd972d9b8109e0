package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired marks a structurally valid token past its expiry.
var ErrTokenExpired = errors.New("token has expired")

// Claims are the JWT claims carried by issued tokens.
type Claims struct {
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	GasID    string `json:"gasId"`
	Roles    string `json:"roles"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies bearer tokens with an HMAC secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token service. ttl is the issued-token lifetime.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the principal.
func (t *Tokens) Issue(p *Principal) (string, error) {
	now := t.now()
	claims := Claims{
		UserID:   p.UserID,
		FullName: p.FullName,
		Email:    p.Email,
		GasID:    p.GasID,
		Roles:    p.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and decodes the claims into a
// principal. Expired tokens return ErrTokenExpired so the gate can
// report them distinctly from other verification failures.
func (t *Tokens) Verify(raw string) (*Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	return &Principal{
		UserID:   claims.UserID,
		FullName: claims.FullName,
		Email:    claims.Email,
		GasID:    claims.GasID,
		Roles:    claims.Roles,
	}, nil
}
