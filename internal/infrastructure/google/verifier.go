package google

import (
	"context"
	"fmt"

	"github.com/atelier-api/internal/domain"
	"github.com/atelier-api/internal/infrastructure/oauth"
	"google.golang.org/api/idtoken"
)

// Payload holds the verified claims extracted from a Google ID token.
type Payload struct {
	Sub           string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
	Picture       string
}

// Profile converts the payload into the normalised OAuth profile.
func (p *Payload) Profile() domain.OAuthProfile {
	op := oauth.Profile{
		ID:   p.Sub,
		Name: oauth.Name{GivenName: p.FirstName, FamilyName: p.LastName},
	}
	if p.Email != "" {
		op.Emails = []oauth.Value{{Value: p.Email}}
	}
	if p.Picture != "" {
		op.Photos = []oauth.Value{{Value: p.Picture}}
	}
	return oauth.Normalize(domain.ProviderGoogle, op)
}

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Verifier verifies Google ID tokens against a specific client ID.
type Verifier struct {
	clientID string
	validate validateFunc
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify validates the Google ID token and returns the extracted payload.
// Returns a domain.ErrUnauthorized-wrapped error if the token is invalid.
func (v *Verifier) Verify(ctx context.Context, token string) (*Payload, error) {
	p, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized)
	}
	email, _ := p.Claims["email"].(string)
	emailVerified, _ := p.Claims["email_verified"].(bool)
	firstName, _ := p.Claims["given_name"].(string)
	lastName, _ := p.Claims["family_name"].(string)
	picture, _ := p.Claims["picture"].(string)
	if email != "" && !emailVerified {
		return nil, fmt.Errorf("google email not verified: %w", domain.ErrUnauthorized)
	}
	return &Payload{
		Sub:           p.Subject,
		Email:         email,
		EmailVerified: emailVerified,
		FirstName:     firstName,
		LastName:      lastName,
		Picture:       picture,
	}, nil
}
