package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/atelier-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every token that fails verification. The
// underlying reason is wrapped for logs but callers only see this sentinel.
var ErrInvalidToken = errors.New("invalid token")

// Token uses. A token signed for one use never verifies for the other.
const (
	UseSession   = "session"
	UseOAuthCode = "oauth_code"
)

// Claims holds the JWT payload fields. Subject carries the user id.
type Claims struct {
	Email    string `json:"email"`
	Provider string `json:"provider,omitempty"`
	Use      string `json:"use"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *Claims) UserID() string { return c.Subject }

// Provider signs and verifies HS256 JWTs with a server secret.
type Provider struct {
	secret     []byte
	sessionTTL time.Duration
	codeTTL    time.Duration
	now        func() time.Time
}

func NewProvider(secret string, sessionTTL, codeTTL time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Provider{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		codeTTL:    codeTTL,
		now:        time.Now,
	}, nil
}

// SignSession issues the access token returned by login flows.
func (p *Provider) SignSession(userID, email string) (string, error) {
	return p.sign(Claims{Email: email, Use: UseSession}, userID, p.sessionTTL)
}

// SignOAuthCode issues the short-lived code handed to the client after a
// provider callback, redeemable for a session token.
func (p *Provider) SignOAuthCode(userID, email string, provider domain.AuthProvider) (string, error) {
	return p.sign(Claims{Email: email, Provider: string(provider), Use: UseOAuthCode}, userID, p.codeTTL)
}

func (p *Provider) VerifySession(tokenStr string) (*Claims, error) {
	return p.verify(tokenStr, UseSession)
}

func (p *Provider) VerifyOAuthCode(tokenStr string) (*Claims, error) {
	return p.verify(tokenStr, UseOAuthCode)
}

func (p *Provider) sign(claims Claims, subject string, ttl time.Duration) (string, error) {
	now := p.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func (p *Provider) verify(tokenStr, use string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidToken)
	}
	if claims.Use != use {
		return nil, fmt.Errorf("%w: token use %q, want %q", ErrInvalidToken, claims.Use, use)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
