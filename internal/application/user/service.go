package user

import (
	"context"
	"strings"

	"github.com/atelier-api/internal/domain"
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	repo userStore
}

type ServiceDeps struct {
	UserRepo userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// UpdateProfile writes the fields present in req and returns the stored user.
// String values are trimmed; an empty value clears the field.
func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	set := func(field string, v *string) {
		if v != nil {
			updates[field] = strings.TrimSpace(*v)
		}
	}
	set(domain.FieldFirstName, req.FirstName)
	set(domain.FieldLastName, req.LastName)
	set(domain.FieldDisplayName, req.DisplayName)
	set(domain.FieldPhoneNumber, req.PhoneNumber)
	set(domain.FieldBio, req.Bio)
	set(domain.FieldAvatarURL, req.AvatarURL)
	set(domain.FieldCountry, req.Country)
	set(domain.FieldCity, req.City)

	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}
