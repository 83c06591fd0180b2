package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/atelier-api/internal/domain"
	"github.com/atelier-api/internal/pkg/id"
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.Portfolio, error)
	Upsert(ctx context.Context, userID string, req UpsertRequest) (*domain.Portfolio, error)
	Delete(ctx context.Context, userID string) error
}

type ImageInput struct {
	ImageURL  string `json:"image_url" validate:"required,url"`
	IsPrimary bool   `json:"is_primary"`
}

// UpsertRequest creates the caller's portfolio or updates the fields present.
// A non-empty Images list replaces the stored images.
type UpsertRequest struct {
	Title       *string      `json:"title" validate:"omitempty,max=200"`
	Description *string      `json:"description"`
	Images      []ImageInput `json:"images" validate:"omitempty,max=50,dive"`
}

type portfolioStore interface {
	GetByUser(ctx context.Context, userID string) (*domain.Portfolio, error)
	Create(ctx context.Context, p *domain.Portfolio) error
	Update(ctx context.Context, portfolioID string, updates map[string]interface{}, images []domain.PortfolioImage) error
	Delete(ctx context.Context, portfolioID string) error
}

type service struct {
	portfolios portfolioStore
	now        func() time.Time
}

type ServiceDeps struct {
	PortfolioRepo portfolioStore
	Now           func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{portfolios: deps.PortfolioRepo, now: now}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.Portfolio, error) {
	return s.portfolios.GetByUser(ctx, userID)
}

func (s *service) Upsert(ctx context.Context, userID string, req UpsertRequest) (*domain.Portfolio, error) {
	existing, err := s.portfolios.GetByUser(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return s.create(ctx, userID, req)
	case err != nil:
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[domain.FieldTitle] = *req.Title
	}
	if req.Description != nil {
		updates[domain.FieldDescription] = *req.Description
	}
	if len(updates) > 0 {
		updates["updated_at"] = s.now().UTC()
	}
	images := s.images(existing.ID, req.Images)
	if len(updates) > 0 || images != nil {
		if err := s.portfolios.Update(ctx, existing.ID, updates, images); err != nil {
			return nil, err
		}
	}
	return s.portfolios.GetByUser(ctx, userID)
}

func (s *service) create(ctx context.Context, userID string, req UpsertRequest) (*domain.Portfolio, error) {
	now := s.now().UTC()
	p := &domain.Portfolio{
		ID:        id.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	p.Images = s.images(p.ID, req.Images)
	if err := s.portfolios.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, userID string) error {
	p, err := s.portfolios.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.portfolios.Delete(ctx, p.ID)
}

// images builds the stored image set. The first image becomes primary when
// none is marked. Returns nil for an empty input.
func (s *service) images(portfolioID string, in []ImageInput) []domain.PortfolioImage {
	if len(in) == 0 {
		return nil
	}
	anyPrimary := false
	for _, img := range in {
		anyPrimary = anyPrimary || img.IsPrimary
	}
	now := s.now().UTC()
	out := make([]domain.PortfolioImage, 0, len(in))
	for i, img := range in {
		out = append(out, domain.PortfolioImage{
			ID:          id.New(),
			PortfolioID: portfolioID,
			ImageURL:    img.ImageURL,
			IsPrimary:   img.IsPrimary || (!anyPrimary && i == 0),
			CreatedAt:   now,
		})
	}
	return out
}
