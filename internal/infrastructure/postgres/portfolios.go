package postgres

import (
	"context"
	"fmt"

	"github.com/atelier-api/internal/domain"
	"gorm.io/gorm"
)

type PortfolioRepo struct {
	db *gorm.DB
}

func NewPortfolioRepo(db *gorm.DB) *PortfolioRepo {
	return &PortfolioRepo{db: db}
}

func (r *PortfolioRepo) GetByUser(ctx context.Context, userID string) (*domain.Portfolio, error) {
	var p domain.Portfolio
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("is_primary DESC, created_at") }).
		First(&p, "user_id = ?", userID).Error
	if err != nil {
		return nil, translate(err, "portfolio")
	}
	return &p, nil
}

// Create inserts p with its images. A second portfolio for the same user
// maps to domain.ErrConflict.
func (r *PortfolioRepo) Create(ctx context.Context, p *domain.Portfolio) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return translate(err, "portfolio")
	}
	return nil
}

// Update applies updates and, when images is non-nil, replaces the image set.
func (r *PortfolioRepo) Update(ctx context.Context, portfolioID string, updates map[string]interface{}, images []domain.PortfolioImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			res := tx.Model(&domain.Portfolio{}).Where("id = ?", portfolioID).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("portfolio not found: %w", domain.ErrNotFound)
			}
		}
		if images == nil {
			return nil
		}
		if err := tx.Where("portfolio_id = ?", portfolioID).Delete(&domain.PortfolioImage{}).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		return tx.Create(&images).Error
	})
}

// Delete removes the portfolio and its images.
func (r *PortfolioRepo) Delete(ctx context.Context, portfolioID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("portfolio_id = ?", portfolioID).Delete(&domain.PortfolioImage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Portfolio{}, "id = ?", portfolioID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("portfolio not found: %w", domain.ErrNotFound)
		}
		return nil
	})
}
