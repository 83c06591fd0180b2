package oauth

import (
	"strings"

	"github.com/atelier-api/internal/domain"
)

// Value is a single entry of a profile's emails or photos list.
type Value struct {
	Value string `json:"value"`
}

// Name holds the structured name of a provider profile.
type Name struct {
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
}

// Profile is the provider-neutral shape every strategy decodes its
// userinfo response into.
type Profile struct {
	ID     string  `json:"id"`
	Emails []Value `json:"emails"`
	Name   Name    `json:"name"`
	Photos []Value `json:"photos"`
}

// Normalize maps a provider profile onto the fields of a local user. A
// profile without an email gets a stable placeholder derived from its id.
func Normalize(provider domain.AuthProvider, p Profile) domain.OAuthProfile {
	email := firstValue(p.Emails)
	if email == "" {
		email = p.ID + "@" + strings.ToLower(string(provider)) + ".local"
	}
	return domain.OAuthProfile{
		Email:      domain.NormalizeEmail(email),
		FirstName:  strings.TrimSpace(p.Name.GivenName),
		LastName:   strings.TrimSpace(p.Name.FamilyName),
		ProviderID: p.ID,
		AvatarURL:  firstValue(p.Photos),
	}
}

func firstValue(vs []Value) string {
	for _, v := range vs {
		if s := strings.TrimSpace(v.Value); s != "" {
			return s
		}
	}
	return ""
}
