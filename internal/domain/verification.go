package domain

import (
	"fmt"
	"time"
)

// TokenPurpose selects which one-time token table a Token belongs to.
type TokenPurpose string

const (
	PurposeEmailVerification TokenPurpose = "email_verification"
	PurposePasswordReset     TokenPurpose = "password_reset"
)

// Lifetimes of the persisted one-time tokens.
const (
	VerificationTokenTTL  = 24 * time.Hour
	PasswordResetTokenTTL = 30 * time.Minute
)

// Token is a one-time value binding a user to an email-verification or
// password-reset intent. UsedAt stays nil until the token is consumed.
type Token struct {
	Token     string       `json:"-"`
	UserID    string       `json:"user_id"`
	Purpose   TokenPurpose `json:"purpose"`
	ExpiresAt time.Time    `json:"expires_at"`
	UsedAt    *time.Time   `json:"used_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Expired reports whether the token is past its expiry at now.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Used reports whether the token has already been consumed.
func (t *Token) Used() bool {
	return t.UsedAt != nil
}

// ErrTokenUsed is returned when a token was consumed before the caller could
// claim it, including the losing side of two concurrent redemptions.
var ErrTokenUsed = fmt.Errorf("token already used: %w", ErrBadRequest)

// ErrTokenExpired is returned when a token passed its expiry, including one
// that expired between being read and being consumed.
var ErrTokenExpired = fmt.Errorf("token expired: %w", ErrBadRequest)
