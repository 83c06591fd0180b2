package domain

// OAuthProfile is a third-party identity normalised into the fields a local
// user record needs.
type OAuthProfile struct {
	Email      string
	FirstName  string
	LastName   string
	ProviderID string
	AvatarURL  string
}
