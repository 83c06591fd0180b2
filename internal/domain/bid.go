package domain

import "time"

// BidStatus is the designer's decision on a bid.
type BidStatus string

const (
	BidPending  BidStatus = "PENDING"
	BidApproved BidStatus = "APPROVED"
	BidRejected BidStatus = "REJECTED"
)

// Final reports whether the decision can no longer change.
func (s BidStatus) Final() bool {
	return s == BidApproved || s == BidRejected
}

// Bid is a tailor's offer on a project. A tailor bids at most once per project.
type Bid struct {
	ID        string    `json:"id" gorm:"primaryKey;size:26"`
	ProjectID string    `json:"project_id" gorm:"size:26;not null;uniqueIndex:idx_bids_project_tailor"`
	TailorID  string    `json:"tailor_id" gorm:"size:26;not null;uniqueIndex:idx_bids_project_tailor;index"`
	Amount    float64   `json:"amount" gorm:"type:numeric(12,2);not null"`
	Duration  string    `json:"duration,omitempty" gorm:"size:100"`
	Message   string    `json:"message,omitempty"`
	Status    BidStatus `json:"status" gorm:"size:20;not null;default:'PENDING'"`
	Project   *Project  `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
