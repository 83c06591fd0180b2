package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/atelier-api/internal/config"
	"github.com/atelier-api/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v3/userinfo"
	facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,email,first_name,last_name,picture.type(large)"
	maxUserInfoBytes    = 1 << 20
)

// Provider runs the authorization-code flow against one identity provider
// and turns its userinfo response into a normalised profile.
type Provider struct {
	name        domain.AuthProvider
	conf        *oauth2.Config
	userInfoURL string
	decode      func([]byte) (Profile, error)
}

func NewGoogle(c config.OAuthClient) *Provider {
	return &Provider{
		name: domain.ProviderGoogle,
		conf: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.CallbackURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		userInfoURL: googleUserInfoURL,
		decode:      decodeGoogle,
	}
}

func NewFacebook(c config.OAuthClient) *Provider {
	return &Provider{
		name: domain.ProviderFacebook,
		conf: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.CallbackURL,
			Endpoint:     facebook.Endpoint,
			Scopes:       []string{"email"},
		},
		userInfoURL: facebookUserInfoURL,
		decode:      decodeFacebook,
	}
}

func (p *Provider) Name() domain.AuthProvider { return p.name }

// AuthCodeURL returns the provider consent page the browser is sent to.
func (p *Provider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange redeems the callback code and fetches the user's profile.
func (p *Provider) Exchange(ctx context.Context, code string) (domain.OAuthProfile, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return domain.OAuthProfile{}, fmt.Errorf("%s code exchange: %w", p.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return domain.OAuthProfile{}, err
	}
	resp, err := p.conf.Client(ctx, tok).Do(req)
	if err != nil {
		return domain.OAuthProfile{}, fmt.Errorf("%s userinfo: %w", p.name, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfoBytes))
	if err != nil {
		return domain.OAuthProfile{}, fmt.Errorf("%s userinfo: %w", p.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.OAuthProfile{}, fmt.Errorf("%s userinfo: status %d", p.name, resp.StatusCode)
	}
	profile, err := p.decode(body)
	if err != nil {
		return domain.OAuthProfile{}, fmt.Errorf("%s userinfo: %w", p.name, err)
	}
	if profile.ID == "" {
		return domain.OAuthProfile{}, fmt.Errorf("%s userinfo: missing subject", p.name)
	}
	return Normalize(p.name, profile), nil
}

func decodeGoogle(b []byte) (Profile, error) {
	var raw struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return Profile{}, err
	}
	p := Profile{ID: raw.Sub, Name: Name{GivenName: raw.GivenName, FamilyName: raw.FamilyName}}
	if raw.Email != "" {
		p.Emails = []Value{{Value: raw.Email}}
	}
	if raw.Picture != "" {
		p.Photos = []Value{{Value: raw.Picture}}
	}
	return p, nil
}

func decodeFacebook(b []byte) (Profile, error) {
	var raw struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Picture   struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return Profile{}, err
	}
	p := Profile{ID: raw.ID, Name: Name{GivenName: raw.FirstName, FamilyName: raw.LastName}}
	if raw.Email != "" {
		p.Emails = []Value{{Value: raw.Email}}
	}
	if raw.Picture.Data.URL != "" {
		p.Photos = []Value{{Value: raw.Picture.Data.URL}}
	}
	return p, nil
}

// Registry holds the providers that have credentials configured.
type Registry map[domain.AuthProvider]*Provider

func NewRegistry(cfg *config.Config) Registry {
	r := Registry{}
	if cfg.Google.Enabled() {
		r[domain.ProviderGoogle] = NewGoogle(cfg.Google)
	}
	if cfg.Facebook.Enabled() {
		r[domain.ProviderFacebook] = NewFacebook(cfg.Facebook)
	}
	return r
}
