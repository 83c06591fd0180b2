package http

import (
	"context"
	"time"

	"github.com/atelier-api/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user store.
// Both the postgres and the dynamo repos satisfy it.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// TokenRepository is the minimal interface the router requires from a
// one-time token store.
type TokenRepository interface {
	Put(ctx context.Context, t *domain.Token) error
	Get(ctx context.Context, purpose domain.TokenPurpose, token string) (*domain.Token, error)
	// Consume marks the token used and applies userUpdates atomically.
	Consume(ctx context.Context, t *domain.Token, now time.Time, userUpdates map[string]interface{}) error
}

// ProjectRepository covers projects with their files and requirements.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, projectID string) (*domain.Project, error)
	Update(ctx context.Context, projectID string, updates map[string]interface{}, files []domain.ProjectFile) error
	Delete(ctx context.Context, projectID string) error
	GetFile(ctx context.Context, fileID string) (*domain.ProjectFile, error)
	DeleteFile(ctx context.Context, fileID string) error
	ListRequirements(ctx context.Context, projectID string) ([]domain.ProjectRequirement, error)
	GetRequirement(ctx context.Context, requirementID string) (*domain.ProjectRequirement, error)
	CreateRequirement(ctx context.Context, req *domain.ProjectRequirement) error
	UpdateRequirement(ctx context.Context, requirementID string, updates map[string]interface{}) error
	DeleteRequirement(ctx context.Context, requirementID string) error
}

type BidRepository interface {
	Create(ctx context.Context, b *domain.Bid) error
	Get(ctx context.Context, bidID string) (*domain.Bid, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Bid, error)
	FindApproved(ctx context.Context, projectID string) (*domain.Bid, error)
	Decide(ctx context.Context, bidID string, status domain.BidStatus) error
	Delete(ctx context.Context, bidID string) error
}

type ReviewRepository interface {
	Create(ctx context.Context, rv *domain.Review) error
	Get(ctx context.Context, reviewID string) (*domain.Review, error)
	ListByTarget(ctx context.Context, target domain.ReviewTarget, targetID string) ([]domain.Review, error)
	Delete(ctx context.Context, reviewID string) error
}

type PortfolioRepository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Portfolio, error)
	Create(ctx context.Context, p *domain.Portfolio) error
	Update(ctx context.Context, portfolioID string, updates map[string]interface{}, images []domain.PortfolioImage) error
	Delete(ctx context.Context, portfolioID string) error
}

// MarketplaceRepos are the stores behind projects, bids, reviews and
// portfolios. Only the postgres driver provides them.
type MarketplaceRepos struct {
	Projects   ProjectRepository
	Bids       BidRepository
	Reviews    ReviewRepository
	Portfolios PortfolioRepository
}
