package domain

import "time"

// ReviewTarget names what a review is about.
type ReviewTarget string

const (
	TargetUser    ReviewTarget = "user"
	TargetProject ReviewTarget = "project"
	TargetProduct ReviewTarget = "product"
)

func (t ReviewTarget) Valid() bool {
	switch t {
	case TargetUser, TargetProject, TargetProduct:
		return true
	}
	return false
}

// Column returns the target id column for t.
func (t ReviewTarget) Column() string {
	return "target_" + string(t) + "_id"
}

// Review is a 1-5 rating left by a user on another user, a project or a product.
// Exactly one target id is set, matching TargetType.
type Review struct {
	ID              string       `json:"id" gorm:"primaryKey;size:26"`
	ReviewerID      string       `json:"reviewer_id" gorm:"size:26;not null;index"`
	TargetType      ReviewTarget `json:"target_type" gorm:"size:20;not null"`
	TargetUserID    *string      `json:"target_user_id,omitempty" gorm:"size:26;index"`
	TargetProjectID *string      `json:"target_project_id,omitempty" gorm:"size:26;index"`
	TargetProductID *string      `json:"target_product_id,omitempty" gorm:"size:64;index"`
	Rating          int          `json:"rating" gorm:"not null"`
	Comment         string       `json:"comment,omitempty"`
	Reviewer        *User        `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	CreatedAt       time.Time    `json:"created_at"`
}
