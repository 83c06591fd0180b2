package domain

import (
	"strings"
	"time"
)

// AuthProvider tags how an account authenticates.
type AuthProvider string

const (
	ProviderEmail    AuthProvider = "EMAIL"
	ProviderGoogle   AuthProvider = "GOOGLE"
	ProviderFacebook AuthProvider = "FACEBOOK"
)

// ParseProvider maps a lower-case route segment ("google", "facebook") to its tag.
func ParseProvider(s string) (AuthProvider, bool) {
	switch strings.ToLower(s) {
	case "google":
		return ProviderGoogle, true
	case "facebook":
		return ProviderFacebook, true
	}
	return "", false
}

const (
	RoleDesigner = "DESIGNER"
	RoleTailor   = "TAILOR"
	RoleAdmin    = "ADMIN"
)

// Column/attribute names used in partial update maps. Both the relational
// and the DynamoDB stores use the same names.
const (
	FieldPasswordHash = "password_hash"
	FieldIsVerified   = "is_verified"
	FieldFirstName    = "first_name"
	FieldLastName     = "last_name"
	FieldDisplayName  = "display_name"
	FieldPhoneNumber  = "phone_number"
	FieldBio          = "bio"
	FieldAvatarURL    = "avatar_url"
	FieldCountry      = "country"
	FieldCity         = "city"
	FieldProviderID   = "provider_id"
	FieldUpdatedAt    = "updated_at"
)

type User struct {
	UserID       string       `json:"id" gorm:"column:id;primaryKey;size:26" dynamodbav:"user_id"`
	Email        string       `json:"email" gorm:"size:255;not null;uniqueIndex" dynamodbav:"email"`
	PasswordHash string       `json:"-" gorm:"column:password_hash" dynamodbav:"password_hash"`
	IsVerified   bool         `json:"is_verified" gorm:"not null;default:false" dynamodbav:"is_verified"`
	IsActive     bool         `json:"is_active" gorm:"not null;default:true" dynamodbav:"is_active"`
	AuthProvider AuthProvider `json:"auth_provider" gorm:"size:20;not null;default:'EMAIL'" dynamodbav:"auth_provider"`
	ProviderID   string       `json:"-" gorm:"size:255" dynamodbav:"provider_id"`
	Role         string       `json:"role" gorm:"size:20;not null;default:'DESIGNER'" dynamodbav:"role"`
	FirstName    string       `json:"first_name" gorm:"size:100" dynamodbav:"first_name"`
	LastName     string       `json:"last_name" gorm:"size:100" dynamodbav:"last_name"`
	DisplayName  string       `json:"display_name" gorm:"size:120" dynamodbav:"display_name"`
	PhoneNumber  string       `json:"phone_number" gorm:"size:20" dynamodbav:"phone_number"`
	Bio          string       `json:"bio" dynamodbav:"bio"`
	AvatarURL    string       `json:"avatar_url" dynamodbav:"avatar_url"`
	Country      string       `json:"country" gorm:"size:100" dynamodbav:"country"`
	City         string       `json:"city" gorm:"size:100" dynamodbav:"city"`
	CreatedAt    time.Time    `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" dynamodbav:"updated_at"`
}

func (User) TableName() string { return "users" }

// NormalizeEmail is applied on every write and lookup so that email
// uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpdateProfileRequest carries the optional profile fields a user may change.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=120"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	Country     *string `json:"country" validate:"omitempty,max=100"`
	City        *string `json:"city" validate:"omitempty,max=100"`
}
