package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelier-api/internal/domain"
	"github.com/atelier-api/internal/pkg/id"
	"gorm.io/gorm"
)

// ErrBidDecided is returned when a decision targets a bid that is no longer pending.
var ErrBidDecided = fmt.Errorf("bid decision is already final: %w", domain.ErrConflict)

type BidRepo struct {
	db *gorm.DB
}

func NewBidRepo(db *gorm.DB) *BidRepo {
	return &BidRepo{db: db}
}

// Create inserts b. A second bid by the same tailor on the same project maps
// to domain.ErrConflict through the composite unique index.
func (r *BidRepo) Create(ctx context.Context, b *domain.Bid) error {
	if err := r.db.WithContext(ctx).Omit("Project").Create(b).Error; err != nil {
		return translate(err, "bid")
	}
	return nil
}

// Get loads a bid with the project it was placed on.
func (r *BidRepo) Get(ctx context.Context, bidID string) (*domain.Bid, error) {
	if !id.Valid(bidID) {
		return nil, fmt.Errorf("bid not found: %w", domain.ErrNotFound)
	}
	var b domain.Bid
	if err := r.db.WithContext(ctx).Preload("Project").First(&b, "id = ?", bidID).Error; err != nil {
		return nil, translate(err, "bid")
	}
	return &b, nil
}

func (r *BidRepo) ListByProject(ctx context.Context, projectID string) ([]domain.Bid, error) {
	bids := []domain.Bid{}
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("project_id = ?", projectID).
		Order("created_at").
		Find(&bids).Error
	return bids, err
}

// FindApproved returns the approved bid of a project, or nil when there is none.
func (r *BidRepo) FindApproved(ctx context.Context, projectID string) (*domain.Bid, error) {
	var b domain.Bid
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, domain.BidApproved).
		Order("updated_at").
		Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Decide moves a pending bid to status. Only one of two racing decisions
// wins; the other sees ErrBidDecided.
func (r *BidRepo) Decide(ctx context.Context, bidID string, status domain.BidStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Bid{}).
		Where("id = ? AND status = ?", bidID, domain.BidPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBidDecided
	}
	return nil
}

func (r *BidRepo) Delete(ctx context.Context, bidID string) error {
	return deleteByID(ctx, r.db, &domain.Bid{}, bidID, "bid")
}
