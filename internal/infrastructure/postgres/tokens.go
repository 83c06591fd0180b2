package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atelier-api/internal/domain"
	"gorm.io/gorm"
)

const (
	tableVerificationTokens  = "verification_tokens"
	tablePasswordResetTokens = "password_reset_tokens"
)

type tokenRow struct {
	Token     string     `gorm:"primaryKey;size:64"`
	UserID    string     `gorm:"size:26;not null;index"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

type verificationTokenRow struct{ tokenRow }

func (verificationTokenRow) TableName() string { return tableVerificationTokens }

type passwordResetTokenRow struct{ tokenRow }

func (passwordResetTokenRow) TableName() string { return tablePasswordResetTokens }

func tableFor(p domain.TokenPurpose) (string, error) {
	switch p {
	case domain.PurposeEmailVerification:
		return tableVerificationTokens, nil
	case domain.PurposePasswordReset:
		return tablePasswordResetTokens, nil
	}
	return "", fmt.Errorf("unknown token purpose %q", p)
}

func toRow(t *domain.Token) tokenRow {
	return tokenRow{Token: t.Token, UserID: t.UserID, ExpiresAt: t.ExpiresAt, UsedAt: t.UsedAt, CreatedAt: t.CreatedAt}
}

func fromRow(r tokenRow, p domain.TokenPurpose) *domain.Token {
	return &domain.Token{Token: r.Token, UserID: r.UserID, Purpose: p, ExpiresAt: r.ExpiresAt, UsedAt: r.UsedAt, CreatedAt: r.CreatedAt}
}

// TokenRepo stores verification and password-reset tokens, one table each.
type TokenRepo struct {
	db *gorm.DB
}

func NewTokenRepo(db *gorm.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

func (r *TokenRepo) Put(ctx context.Context, t *domain.Token) error {
	table, err := tableFor(t.Purpose)
	if err != nil {
		return err
	}
	row := toRow(t)
	if err := r.db.WithContext(ctx).Table(table).Create(&row).Error; err != nil {
		return translate(err, "token")
	}
	return nil
}

func (r *TokenRepo) Get(ctx context.Context, purpose domain.TokenPurpose, token string) (*domain.Token, error) {
	table, err := tableFor(purpose)
	if err != nil {
		return nil, err
	}
	var row tokenRow
	if err := r.db.WithContext(ctx).Table(table).Where("token = ?", token).Take(&row).Error; err != nil {
		return nil, translate(err, "token")
	}
	return fromRow(row, purpose), nil
}

// Consume marks t used and applies userUpdates to its owner in one
// transaction. The conditional UPDATE makes the loser of two concurrent
// redemptions see domain.ErrTokenUsed and roll back; a token that expired
// since it was read gets domain.ErrTokenExpired.
func (r *TokenRepo) Consume(ctx context.Context, t *domain.Token, now time.Time, userUpdates map[string]interface{}) error {
	table, err := tableFor(t.Purpose)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(table).
			Where("token = ? AND used_at IS NULL AND expires_at > ?", t.Token, now).
			Update("used_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return staleToken(tx, table, t.Token)
		}
		res = tx.Model(&domain.User{}).Where("id = ?", t.UserID).Updates(userUpdates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil
	})
}

// staleToken explains why the conditional update matched no row.
func staleToken(tx *gorm.DB, table, token string) error {
	var row tokenRow
	err := tx.Table(table).Where("token = ?", token).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrTokenUsed
	}
	if err != nil {
		return err
	}
	if row.UsedAt != nil {
		return domain.ErrTokenUsed
	}
	return domain.ErrTokenExpired
}
