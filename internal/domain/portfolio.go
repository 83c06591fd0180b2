package domain

import "time"

// Portfolio showcases a user's work. Each user has at most one.
type Portfolio struct {
	ID          string           `json:"id" gorm:"primaryKey;size:26"`
	UserID      string           `json:"user_id" gorm:"size:26;not null;uniqueIndex"`
	Title       string           `json:"title" gorm:"size:200"`
	Description string           `json:"description"`
	Images      []PortfolioImage `json:"images" gorm:"foreignKey:PortfolioID"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type PortfolioImage struct {
	ID          string    `json:"id" gorm:"primaryKey;size:26"`
	PortfolioID string    `json:"portfolio_id" gorm:"size:26;not null;index"`
	ImageURL    string    `json:"image_url" gorm:"not null"`
	IsPrimary   bool      `json:"is_primary" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
}
