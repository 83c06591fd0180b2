package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atelier-api/internal/domain"
	jwtinfra "github.com/atelier-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, sessionTTL time.Duration) *jwtinfra.Provider {
	t.Helper()
	p, err := jwtinfra.NewProvider("middleware-test-secret-0123456789abcdef", sessionTTL, 5*time.Minute)
	require.NoError(t, err)
	return p
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func serve(p *jwtinfra.Provider, header string, next http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	Auth(p)(next).ServeHTTP(rr, req)
	return rr
}

func TestAuth_MissingHeader(t *testing.T) {
	rr := serve(newTestProvider(t, time.Hour), "", http.HandlerFunc(okHandler))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestAuth_BadToken(t *testing.T) {
	rr := serve(newTestProvider(t, time.Hour), "Bearer not-a-real-token", http.HandlerFunc(okHandler))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	p := newTestProvider(t, -time.Minute)
	signed, err := p.SignSession("u1", "a@x.com")
	require.NoError(t, err)

	rr := serve(p, "Bearer "+signed, http.HandlerFunc(okHandler))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_OAuthCodeIsNotASession(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	code, err := p.SignOAuthCode("u1", "a@x.com", domain.ProviderGoogle)
	require.NoError(t, err)

	rr := serve(p, "Bearer "+code, http.HandlerFunc(okHandler))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_ValidToken_InjectsClaims(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	signed, err := p.SignSession("u1", "a@x.com")
	require.NoError(t, err)

	var gotClaims *jwtinfra.Claims
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := serve(p, "Bearer "+signed, capture)
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "u1", gotClaims.UserID())
	assert.Equal(t, "a@x.com", gotClaims.Email)
}
