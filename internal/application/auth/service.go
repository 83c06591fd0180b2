package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/atelier-api/internal/domain"
	"github.com/atelier-api/internal/infrastructure/google"
	jwtinfra "github.com/atelier-api/internal/infrastructure/jwt"
	"github.com/atelier-api/internal/infrastructure/smtp"
	"github.com/atelier-api/internal/pkg/id"
	pkgtoken "github.com/atelier-api/internal/pkg/token"
)

// Result statuses returned to clients.
const (
	StatusVerificationSent = "verification_email_sent"
	StatusSent             = "sent"
	StatusOK               = "ok"
	StatusPasswordReset    = "password_reset"
)

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type OAuthCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type GoogleTokenRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// StatusResult is returned by flows that do not log the user in.
type StatusResult struct {
	Status string `json:"status"`
}

// TokenResult carries a session token.
type TokenResult struct {
	AccessToken string `json:"access_token"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*StatusResult, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResult, error)
	VerifyEmail(ctx context.Context, token string) (*TokenResult, error)
	ResendVerification(ctx context.Context, email string) (*StatusResult, error)
	ForgotPassword(ctx context.Context, email string) (*StatusResult, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*StatusResult, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	HandleOAuthLogin(ctx context.Context, provider domain.AuthProvider, profile domain.OAuthProfile) (*domain.User, error)
	CreateOAuthCode(u *domain.User, provider domain.AuthProvider) (string, error)
	ExchangeOAuthCode(ctx context.Context, code string) (*TokenResult, error)
	LoginWithGoogleIDToken(ctx context.Context, idToken string) (*TokenResult, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type tokenStore interface {
	Put(ctx context.Context, t *domain.Token) error
	Get(ctx context.Context, purpose domain.TokenPurpose, token string) (*domain.Token, error)
	Consume(ctx context.Context, t *domain.Token, now time.Time, userUpdates map[string]interface{}) error
}

type mailer interface {
	SendTemplate(ctx context.Context, msg smtp.Message) error
}

type signer interface {
	SignSession(userID, email string) (string, error)
	SignOAuthCode(userID, email string, provider domain.AuthProvider) (string, error)
	VerifyOAuthCode(token string) (*jwtinfra.Claims, error)
}

type hasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
	Unusable() (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type service struct {
	users     userStore
	tokens    tokenStore
	mailer    mailer
	signer    signer
	hasher    hasher
	google    googleVerifier
	verifyURL string
	resetURL  string
	now       func() time.Time
}

type ServiceDeps struct {
	UserRepo         userStore
	TokenRepo        tokenStore
	Mailer           mailer
	Signer           signer
	Hasher           hasher
	GoogleVerifier   googleVerifier
	VerifyURL        string
	ResetPasswordURL string
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:     deps.UserRepo,
		tokens:    deps.TokenRepo,
		mailer:    deps.Mailer,
		signer:    deps.Signer,
		hasher:    deps.Hasher,
		google:    deps.GoogleVerifier,
		verifyURL: deps.VerifyURL,
		resetURL:  deps.ResetPasswordURL,
		now:       now,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*StatusResult, error) {
	email := domain.NormalizeEmail(req.Email)
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		AuthProvider: domain.ProviderEmail,
		Role:         domain.RoleDesigner,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	if err := s.sendVerification(ctx, u); err != nil {
		return nil, err
	}
	slog.Info("user registered", "user_id", u.UserID)
	return &StatusResult{Status: StatusVerificationSent}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Compare(u.PasswordHash, req.Password) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !u.IsVerified {
		return nil, fmt.Errorf("email not verified: %w", domain.ErrUnauthorized)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	return s.session(u)
}

func (s *service) VerifyEmail(ctx context.Context, token string) (*TokenResult, error) {
	t, err := s.redeem(ctx, domain.PurposeEmailVerification, token, map[string]interface{}{
		domain.FieldIsVerified: true,
	})
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, t.UserID)
	if err != nil {
		return nil, err
	}
	slog.Info("email verified", "user_id", u.UserID)
	return s.session(u)
}

func (s *service) ResendVerification(ctx context.Context, email string) (*StatusResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrBadRequest)
	}
	if err != nil {
		return nil, err
	}
	if u.IsVerified {
		return nil, fmt.Errorf("user already verified: %w", domain.ErrBadRequest)
	}
	if err := s.sendVerification(ctx, u); err != nil {
		return nil, err
	}
	return &StatusResult{Status: StatusSent}, nil
}

// ForgotPassword answers the same way whether or not the email belongs to an
// account. Mail delivery is best-effort.
func (s *service) ForgotPassword(ctx context.Context, email string) (*StatusResult, error) {
	ok := &StatusResult{Status: StatusOK}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return ok, nil
	}
	if err != nil {
		return nil, err
	}
	t, err := s.newToken(ctx, u.UserID, domain.PurposePasswordReset, domain.PasswordResetTokenTTL)
	if err != nil {
		return nil, err
	}
	err = s.mailer.SendTemplate(ctx, smtp.Message{
		To:       u.Email,
		Subject:  "Reset your password",
		Template: smtp.TemplateResetPassword,
		Context: map[string]any{
			"firstName": u.FirstName,
			"resetUrl":  withToken(s.resetURL, t.Token),
		},
	})
	if err != nil {
		slog.Warn("failed to send password reset email", "user_id", u.UserID, "err", err)
	}
	return ok, nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) (*StatusResult, error) {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}
	t, err := s.redeem(ctx, domain.PurposePasswordReset, token, map[string]interface{}{
		domain.FieldPasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("password reset", "user_id", t.UserID)
	return &StatusResult{Status: StatusPasswordReset}, nil
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.AuthProvider != domain.ProviderEmail {
		return fmt.Errorf("password login disabled for this account: %w", domain.ErrBadRequest)
	}
	if !s.hasher.Compare(u.PasswordHash, currentPassword) {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, userID, map[string]interface{}{domain.FieldPasswordHash: hash})
}

// HandleOAuthLogin links a provider identity to a local account, creating a
// verified account on first sight of the email.
func (s *service) HandleOAuthLogin(ctx context.Context, provider domain.AuthProvider, p domain.OAuthProfile) (*domain.User, error) {
	email := domain.NormalizeEmail(p.Email)
	if email == "" {
		return nil, fmt.Errorf("provider returned no email: %w", domain.ErrBadRequest)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return s.backfill(ctx, u, p)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Unusable()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u = &domain.User{
		UserID:       id.New(),
		Email:        email,
		PasswordHash: hash,
		IsVerified:   true,
		IsActive:     true,
		AuthProvider: provider,
		ProviderID:   p.ProviderID,
		Role:         domain.RoleDesigner,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		AvatarURL:    p.AvatarURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	slog.Info("oauth user created", "user_id", u.UserID, "provider", provider)
	return u, nil
}

// backfill copies profile fields the account is missing.
func (s *service) backfill(ctx context.Context, u *domain.User, p domain.OAuthProfile) (*domain.User, error) {
	updates := map[string]interface{}{}
	if u.FirstName == "" && p.FirstName != "" {
		u.FirstName = p.FirstName
		updates[domain.FieldFirstName] = p.FirstName
	}
	if u.LastName == "" && p.LastName != "" {
		u.LastName = p.LastName
		updates[domain.FieldLastName] = p.LastName
	}
	if u.AvatarURL == "" && p.AvatarURL != "" {
		u.AvatarURL = p.AvatarURL
		updates[domain.FieldAvatarURL] = p.AvatarURL
	}
	if len(updates) == 0 {
		return u, nil
	}
	if err := s.users.Update(ctx, u.UserID, updates); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) CreateOAuthCode(u *domain.User, provider domain.AuthProvider) (string, error) {
	return s.signer.SignOAuthCode(u.UserID, u.Email, provider)
}

// ExchangeOAuthCode redeems a code for a session. The code is stateless, so
// it stays redeemable until it expires.
func (s *service) ExchangeOAuthCode(ctx context.Context, code string) (*TokenResult, error) {
	claims, err := s.signer.VerifyOAuthCode(code)
	if err != nil {
		slog.Warn("oauth code rejected", "err", err)
		return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrBadRequest)
	}
	u, err := s.users.Get(ctx, claims.UserID())
	if errors.Is(err, domain.ErrNotFound) {
		slog.Warn("oauth code for unknown user", "user_id", claims.UserID())
		return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrBadRequest)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	return s.session(u)
}

func (s *service) LoginWithGoogleIDToken(ctx context.Context, idToken string) (*TokenResult, error) {
	if s.google == nil {
		return nil, fmt.Errorf("google login is not configured: %w", domain.ErrBadRequest)
	}
	payload, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	u, err := s.HandleOAuthLogin(ctx, domain.ProviderGoogle, payload.Profile())
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	return s.session(u)
}

func (s *service) session(u *domain.User) (*TokenResult, error) {
	tok, err := s.signer.SignSession(u.UserID, u.Email)
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: tok}, nil
}

func (s *service) newToken(ctx context.Context, userID string, purpose domain.TokenPurpose, ttl time.Duration) (*domain.Token, error) {
	value, err := pkgtoken.New()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	t := &domain.Token{
		Token:     value,
		UserID:    userID,
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.tokens.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// sendVerification issues a fresh verification token and mails it. A
// delivery failure is reported to the caller.
func (s *service) sendVerification(ctx context.Context, u *domain.User) error {
	t, err := s.newToken(ctx, u.UserID, domain.PurposeEmailVerification, domain.VerificationTokenTTL)
	if err != nil {
		return err
	}
	err = s.mailer.SendTemplate(ctx, smtp.Message{
		To:       u.Email,
		Subject:  "Verify your email",
		Template: smtp.TemplateVerifyEmail,
		Context: map[string]any{
			"firstName": u.FirstName,
			"verifyUrl": withToken(s.verifyURL, t.Token),
		},
	})
	if err != nil {
		slog.Error("failed to send verification email", "user_id", u.UserID, "err", err)
		return fmt.Errorf("failed to send verification email: %w", domain.ErrBadRequest)
	}
	return nil
}

// redeem checks a one-time token and consumes it together with its effect
// on the owning user. Token values never reach the logs.
func (s *service) redeem(ctx context.Context, purpose domain.TokenPurpose, value string, effect map[string]interface{}) (*domain.Token, error) {
	t, err := s.tokens.Get(ctx, purpose, value)
	if errors.Is(err, domain.ErrNotFound) {
		slog.Warn("token rejected", "purpose", purpose, "reason", "unknown")
		return nil, fmt.Errorf("invalid token: %w", domain.ErrBadRequest)
	}
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if t.Used() {
		slog.Warn("token rejected", "purpose", purpose, "user_id", t.UserID, "reason", "used")
		return nil, domain.ErrTokenUsed
	}
	if t.Expired(now) {
		slog.Warn("token rejected", "purpose", purpose, "user_id", t.UserID, "reason", "expired")
		return nil, domain.ErrTokenExpired
	}
	if err := s.tokens.Consume(ctx, t, now, effect); err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			slog.Warn("token rejected", "purpose", purpose, "user_id", t.UserID, "reason", "expired_at_consume")
			return nil, err
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrBadRequest)
		}
		return nil, err
	}
	return t, nil
}

func withToken(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
