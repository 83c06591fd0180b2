package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/atelier-api/internal/application/auth"
	"github.com/atelier-api/internal/domain"
	pkgtoken "github.com/atelier-api/internal/pkg/token"
	"github.com/go-chi/chi/v5"
)

const stateCookie = "oauth_state"

// OAuthProvider is one configured identity provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (domain.OAuthProfile, error)
}

// OAuthHandler runs the browser redirect flow and hands the client a
// short-lived exchange code on the frontend redirect URL.
type OAuthHandler struct {
	svc         auth.Service
	providers   map[domain.AuthProvider]OAuthProvider
	redirectURL string
	stateTTL    time.Duration
	secure      bool
}

type OAuthHandlerDeps struct {
	Service       auth.Service
	Providers     map[domain.AuthProvider]OAuthProvider
	RedirectURL   string
	StateTTL      time.Duration
	SecureCookies bool
}

func NewOAuthHandler(deps OAuthHandlerDeps) *OAuthHandler {
	return &OAuthHandler{
		svc:         deps.Service,
		providers:   deps.Providers,
		redirectURL: deps.RedirectURL,
		stateTTL:    deps.StateTTL,
		secure:      deps.SecureCookies,
	}
}

func (h *OAuthHandler) provider(r *http.Request) (domain.AuthProvider, OAuthProvider, bool) {
	name, ok := domain.ParseProvider(chi.URLParam(r, "provider"))
	if !ok {
		return "", nil, false
	}
	p, ok := h.providers[name]
	return name, p, ok
}

// Begin redirects the browser to the provider's consent page.
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	_, p, ok := h.provider(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown provider")
		return
	}
	state, err := pkgtoken.New()
	if err != nil {
		httpError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(h.stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, p.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the provider login and redirects to the frontend with
// either ?code= or ?error=.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	name, p, ok := h.provider(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown provider")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: h.secure})

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		slog.Info("oauth login cancelled", "provider", name, "reason", e)
		h.finish(w, r, "error", "access_denied")
		return
	}
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || subtle.ConstantTimeCompare([]byte(c.Value), []byte(q.Get("state"))) != 1 {
		slog.Warn("oauth state mismatch", "provider", name)
		h.finish(w, r, "error", "invalid_state")
		return
	}
	profile, err := p.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		slog.Warn("oauth exchange failed", "provider", name, "err", err)
		h.finish(w, r, "error", "oauth_failed")
		return
	}
	u, err := h.svc.HandleOAuthLogin(r.Context(), name, profile)
	if err != nil {
		slog.Error("oauth login failed", "provider", name, "err", err)
		h.finish(w, r, "error", "oauth_failed")
		return
	}
	code, err := h.svc.CreateOAuthCode(u, name)
	if err != nil {
		slog.Error("oauth code issue failed", "user_id", u.UserID, "err", err)
		h.finish(w, r, "error", "oauth_failed")
		return
	}
	h.finish(w, r, "code", code)
}

func (h *OAuthHandler) finish(w http.ResponseWriter, r *http.Request, key, value string) {
	target, err := url.Parse(h.redirectURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "invalid redirect url")
		return
	}
	q := target.Query()
	q.Set(key, value)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}
