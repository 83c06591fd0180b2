package http

import (
	"context"
	"net/http"

	"github.com/atelier-api/internal/application/auth"
	"github.com/atelier-api/internal/application/bid"
	"github.com/atelier-api/internal/application/portfolio"
	"github.com/atelier-api/internal/application/project"
	"github.com/atelier-api/internal/application/review"
	"github.com/atelier-api/internal/application/user"
	"github.com/atelier-api/internal/config"
	"github.com/atelier-api/internal/domain"
	"github.com/atelier-api/internal/infrastructure/google"
	jwtinfra "github.com/atelier-api/internal/infrastructure/jwt"
	"github.com/atelier-api/internal/infrastructure/oauth"
	"github.com/atelier-api/internal/infrastructure/smtp"
	"github.com/atelier-api/internal/pkg/password"
	"github.com/atelier-api/internal/transport/http/handler"
	appmiddleware "github.com/atelier-api/internal/transport/http/middleware"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	TokenRepo   TokenRepository
	Mailer      smtp.Mailer
	JWTProvider *jwtinfra.Provider
	Hasher      *password.Hasher
	OAuth       oauth.Registry

	// GoogleVerifier is nil when Google sign-in is not configured.
	GoogleVerifier *google.Verifier
	HealthCheck    func(ctx context.Context) error

	// RateLimiter guards the credential endpoints. The caller owns it and
	// stops it on shutdown. Nil disables limiting.
	RateLimiter *appmiddleware.RateLimiter

	// Marketplace is nil when the configured store has no relational tables;
	// the project, bid, review and portfolio routes are then not mounted.
	Marketplace *MarketplaceRepos
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if cfg.SentryDSN != "" {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	limit := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		limit = deps.RateLimiter.Limit
	}

	authDeps := auth.ServiceDeps{
		UserRepo:         deps.UserRepo,
		TokenRepo:        deps.TokenRepo,
		Mailer:           deps.Mailer,
		Signer:           deps.JWTProvider,
		Hasher:           deps.Hasher,
		VerifyURL:        cfg.FrontendURLs.VerifyURL,
		ResetPasswordURL: cfg.FrontendURLs.ResetPasswordURL,
	}
	if deps.GoogleVerifier != nil {
		authDeps.GoogleVerifier = deps.GoogleVerifier
	}
	authSvc := auth.NewService(authDeps)
	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo})

	providers := make(map[domain.AuthProvider]handler.OAuthProvider, len(deps.OAuth))
	for name, p := range deps.OAuth {
		providers[name] = p
	}

	healthH := handler.NewHealthHandler(deps.HealthCheck)
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	oauthH := handler.NewOAuthHandler(handler.OAuthHandlerDeps{
		Service:       authSvc,
		Providers:     providers,
		RedirectURL:   cfg.FrontendURLs.OAuthRedirectURL,
		StateTTL:      cfg.OAuthStateTTL,
		SecureCookies: cfg.IsProduction(),
	})

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Health)

		r.Route("/auth", func(r chi.Router) {
			r.With(limit).Post("/register", authH.Register)
			r.With(limit).Post("/login", authH.Login)
			r.With(limit).Post("/forgot-password", authH.ForgotPassword)
			r.With(limit).Post("/reset-password", authH.ResetPassword)
			r.Post("/verify-email", authH.VerifyEmail)
			r.Post("/resend-verification", authH.ResendVerification)
			r.Post("/oauth/exchange", authH.ExchangeOAuthCode)
			r.With(limit).Post("/google/token", authH.GoogleToken)
			r.Get("/{provider}", oauthH.Begin)
			r.Get("/{provider}/callback", oauthH.Callback)

			r.With(authMw).Post("/change-password", authH.ChangePassword)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/me", userH.Me)
			r.Patch("/users/me", userH.UpdateMe)

			if deps.Marketplace != nil {
				mountMarketplace(r, deps.Marketplace)
			}
		})
	})

	return r
}

func mountMarketplace(r chi.Router, m *MarketplaceRepos) {
	projectH := handler.NewProjectHandler(project.NewService(project.ServiceDeps{
		ProjectRepo: m.Projects,
		BidRepo:     m.Bids,
		ReviewRepo:  m.Reviews,
	}))
	bidH := handler.NewBidHandler(bid.NewService(bid.ServiceDeps{
		BidRepo:     m.Bids,
		ProjectRepo: m.Projects,
	}))
	reviewH := handler.NewReviewHandler(review.NewService(review.ServiceDeps{ReviewRepo: m.Reviews}))
	portfolioH := handler.NewPortfolioHandler(portfolio.NewService(portfolio.ServiceDeps{PortfolioRepo: m.Portfolios}))

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", projectH.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", projectH.Get)
			r.Patch("/", projectH.Update)
			r.Delete("/", projectH.Delete)
			r.Post("/close", projectH.Close)
			r.Delete("/files/{fileID}", projectH.DeleteFile)

			r.Get("/requirements", projectH.ListRequirements)
			r.Post("/requirements", projectH.CreateRequirement)
			r.Patch("/requirements/{reqID}", projectH.UpdateRequirement)
			r.Delete("/requirements/{reqID}", projectH.DeleteRequirement)
			r.Post("/requirements/{reqID}/approve", projectH.ApproveRequirement)

			r.Post("/bids", bidH.Create)
			r.Get("/bids", bidH.ListForProject)
		})
	})

	r.Route("/bids/{bidID}", func(r chi.Router) {
		r.Get("/", bidH.Get)
		r.Patch("/decision", bidH.Decide)
		r.Delete("/", bidH.Withdraw)
	})

	r.Get("/reviews/{targetType}/{targetID}", reviewH.List)
	r.Post("/reviews", reviewH.Create)
	r.Delete("/reviews/{id}", reviewH.Delete)

	r.Get("/portfolio", portfolioH.Get)
	r.Post("/portfolio", portfolioH.Upsert)
	r.Delete("/portfolio", portfolioH.Delete)
}
