package postgres

import (
	"context"
	"fmt"

	"github.com/atelier-api/internal/domain"
	"github.com/atelier-api/internal/pkg/id"
	"gorm.io/gorm"
)

type ReviewRepo struct {
	db *gorm.DB
}

func NewReviewRepo(db *gorm.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	if err := r.db.WithContext(ctx).Omit("Reviewer").Create(rv).Error; err != nil {
		return translate(err, "review")
	}
	return nil
}

func (r *ReviewRepo) Get(ctx context.Context, reviewID string) (*domain.Review, error) {
	if !id.Valid(reviewID) {
		return nil, fmt.Errorf("review not found: %w", domain.ErrNotFound)
	}
	var rv domain.Review
	if err := r.db.WithContext(ctx).First(&rv, "id = ?", reviewID).Error; err != nil {
		return nil, translate(err, "review")
	}
	return &rv, nil
}

// ListByTarget returns the reviews of one target, newest first, with the
// reviewer's public profile attached.
func (r *ReviewRepo) ListByTarget(ctx context.Context, target domain.ReviewTarget, targetID string) ([]domain.Review, error) {
	reviews := []domain.Review{}
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		Where("target_type = ?", target).
		Where(target.Column()+" = ?", targetID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepo) Delete(ctx context.Context, reviewID string) error {
	return deleteByID(ctx, r.db, &domain.Review{}, reviewID, "review")
}
