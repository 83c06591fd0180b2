package bid

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atelier-api/internal/domain"
	"github.com/atelier-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, projectID, tailorID string, req CreateRequest) (*domain.Bid, error)
	ListForProject(ctx context.Context, projectID, userID string) ([]domain.Bid, error)
	Get(ctx context.Context, bidID, userID string) (*domain.Bid, error)
	Decide(ctx context.Context, bidID, userID string, decision domain.BidStatus) (*domain.Bid, error)
	Withdraw(ctx context.Context, bidID, userID string) error
}

type CreateRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Duration string  `json:"duration" validate:"omitempty,max=100"`
	Message  string  `json:"message" validate:"omitempty,max=2000"`
}

type DecisionRequest struct {
	Decision domain.BidStatus `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
}

type bidStore interface {
	Create(ctx context.Context, b *domain.Bid) error
	Get(ctx context.Context, bidID string) (*domain.Bid, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Bid, error)
	Decide(ctx context.Context, bidID string, status domain.BidStatus) error
	Delete(ctx context.Context, bidID string) error
}

type projectStore interface {
	Get(ctx context.Context, projectID string) (*domain.Project, error)
}

type service struct {
	bids     bidStore
	projects projectStore
	now      func() time.Time
}

type ServiceDeps struct {
	BidRepo     bidStore
	ProjectRepo projectStore
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{bids: deps.BidRepo, projects: deps.ProjectRepo, now: now}
}

// Create places a pending bid. The store rejects a second bid by the same
// tailor on the same project.
func (s *service) Create(ctx context.Context, projectID, tailorID string, req CreateRequest) (*domain.Bid, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.DesignerID == tailorID {
		return nil, fmt.Errorf("cannot bid on your own project: %w", domain.ErrForbidden)
	}
	now := s.now().UTC()
	b := &domain.Bid{
		ID:        id.New(),
		ProjectID: projectID,
		TailorID:  tailorID,
		Amount:    req.Amount,
		Duration:  req.Duration,
		Message:   req.Message,
		Status:    domain.BidPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.bids.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ListForProject(ctx context.Context, projectID, userID string) ([]domain.Bid, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.DesignerID != userID {
		return nil, fmt.Errorf("only the project owner can view bids: %w", domain.ErrForbidden)
	}
	return s.bids.ListByProject(ctx, projectID)
}

// Get is visible to the bidding tailor and to the project's designer.
func (s *service) Get(ctx context.Context, bidID, userID string) (*domain.Bid, error) {
	b, err := s.bids.Get(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if b.TailorID != userID && designerOf(b) != userID {
		return nil, fmt.Errorf("not allowed to view this bid: %w", domain.ErrForbidden)
	}
	return b, nil
}

func (s *service) Decide(ctx context.Context, bidID, userID string, decision domain.BidStatus) (*domain.Bid, error) {
	if !decision.Final() {
		return nil, fmt.Errorf("decision must be APPROVED or REJECTED: %w", domain.ErrBadRequest)
	}
	b, err := s.bids.Get(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if designerOf(b) != userID {
		return nil, fmt.Errorf("only the project designer can decide on bids: %w", domain.ErrForbidden)
	}
	if b.Status.Final() {
		return nil, fmt.Errorf("bid decision is already final: %w", domain.ErrConflict)
	}
	if err := s.bids.Decide(ctx, bidID, decision); err != nil {
		return nil, err
	}
	slog.Info("bid decided", "bid_id", bidID, "project_id", b.ProjectID, "decision", decision)
	b.Status = decision
	b.UpdatedAt = s.now().UTC()
	return b, nil
}

func (s *service) Withdraw(ctx context.Context, bidID, userID string) error {
	b, err := s.bids.Get(ctx, bidID)
	if err != nil {
		return err
	}
	if b.TailorID != userID {
		return fmt.Errorf("you can only delete your own bid: %w", domain.ErrForbidden)
	}
	return s.bids.Delete(ctx, bidID)
}

func designerOf(b *domain.Bid) string {
	if b.Project == nil {
		return ""
	}
	return b.Project.DesignerID
}
