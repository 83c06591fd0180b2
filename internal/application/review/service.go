package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atelier-api/internal/domain"
	"github.com/atelier-api/internal/pkg/id"
)

type Service interface {
	List(ctx context.Context, target domain.ReviewTarget, targetID string) ([]domain.Review, error)
	Create(ctx context.Context, reviewerID string, req CreateRequest) (*domain.Review, error)
	Delete(ctx context.Context, reviewID, reviewerID string) error
}

type CreateRequest struct {
	TargetType domain.ReviewTarget `json:"target_type" validate:"required"`
	TargetID   string              `json:"target_id" validate:"required,max=64"`
	Rating     int                 `json:"rating" validate:"required,min=1,max=5"`
	Comment    string              `json:"comment" validate:"omitempty,max=2000"`
}

type reviewStore interface {
	Create(ctx context.Context, rv *domain.Review) error
	Get(ctx context.Context, reviewID string) (*domain.Review, error)
	ListByTarget(ctx context.Context, target domain.ReviewTarget, targetID string) ([]domain.Review, error)
	Delete(ctx context.Context, reviewID string) error
}

type service struct {
	reviews reviewStore
	now     func() time.Time
}

type ServiceDeps struct {
	ReviewRepo reviewStore
	Now        func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{reviews: deps.ReviewRepo, now: now}
}

// List returns the reviews of a target. An unknown target type names no
// collection, so it reads as not found.
func (s *service) List(ctx context.Context, target domain.ReviewTarget, targetID string) ([]domain.Review, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("invalid target type: %w", domain.ErrNotFound)
	}
	return s.reviews.ListByTarget(ctx, target, targetID)
}

func (s *service) Create(ctx context.Context, reviewerID string, req CreateRequest) (*domain.Review, error) {
	rv := &domain.Review{
		ID:         id.New(),
		ReviewerID: reviewerID,
		TargetType: req.TargetType,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
		CreatedAt:  s.now().UTC(),
	}
	targetID := req.TargetID
	switch req.TargetType {
	case domain.TargetUser:
		rv.TargetUserID = &targetID
	case domain.TargetProject:
		rv.TargetProjectID = &targetID
	case domain.TargetProduct:
		rv.TargetProductID = &targetID
	default:
		return nil, fmt.Errorf("invalid target type: %w", domain.ErrBadRequest)
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *service) Delete(ctx context.Context, reviewID, reviewerID string) error {
	rv, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if rv.ReviewerID != reviewerID {
		return fmt.Errorf("you can only delete your own review: %w", domain.ErrForbidden)
	}
	return s.reviews.Delete(ctx, reviewID)
}
