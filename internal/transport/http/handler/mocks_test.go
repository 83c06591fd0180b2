package handler

import (
	"context"

	"github.com/atelier-api/internal/application/auth"
	"github.com/atelier-api/internal/application/bid"
	"github.com/atelier-api/internal/application/portfolio"
	"github.com/atelier-api/internal/application/project"
	"github.com/atelier-api/internal/application/review"
	"github.com/atelier-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) status(args mock.Arguments) (*auth.StatusResult, error) {
	if r, _ := args.Get(0).(*auth.StatusResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) token(args mock.Arguments) (*auth.TokenResult, error) {
	if r, _ := args.Get(0).(*auth.TokenResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Register(ctx context.Context, req auth.RegisterRequest) (*auth.StatusResult, error) {
	return m.status(m.Called(ctx, req))
}
func (m *mockAuthSvc) Login(ctx context.Context, req auth.LoginRequest) (*auth.TokenResult, error) {
	return m.token(m.Called(ctx, req))
}
func (m *mockAuthSvc) VerifyEmail(ctx context.Context, token string) (*auth.TokenResult, error) {
	return m.token(m.Called(ctx, token))
}
func (m *mockAuthSvc) ResendVerification(ctx context.Context, email string) (*auth.StatusResult, error) {
	return m.status(m.Called(ctx, email))
}
func (m *mockAuthSvc) ForgotPassword(ctx context.Context, email string) (*auth.StatusResult, error) {
	return m.status(m.Called(ctx, email))
}
func (m *mockAuthSvc) ResetPassword(ctx context.Context, token, newPassword string) (*auth.StatusResult, error) {
	return m.status(m.Called(ctx, token, newPassword))
}
func (m *mockAuthSvc) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	return m.Called(ctx, userID, currentPassword, newPassword).Error(0)
}
func (m *mockAuthSvc) HandleOAuthLogin(ctx context.Context, provider domain.AuthProvider, p domain.OAuthProfile) (*domain.User, error) {
	args := m.Called(ctx, provider, p)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) CreateOAuthCode(u *domain.User, provider domain.AuthProvider) (string, error) {
	args := m.Called(u, provider)
	return args.String(0), args.Error(1)
}
func (m *mockAuthSvc) ExchangeOAuthCode(ctx context.Context, code string) (*auth.TokenResult, error) {
	return m.token(m.Called(ctx, code))
}
func (m *mockAuthSvc) LoginWithGoogleIDToken(ctx context.Context, idToken string) (*auth.TokenResult, error) {
	return m.token(m.Called(ctx, idToken))
}

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserSvc) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOAuthProvider struct{ mock.Mock }

func (m *mockOAuthProvider) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}
func (m *mockOAuthProvider) Exchange(ctx context.Context, code string) (domain.OAuthProfile, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.OAuthProfile), args.Error(1)
}

type mockProjectSvc struct{ mock.Mock }

func (m *mockProjectSvc) project(args mock.Arguments) (*domain.Project, error) {
	if p, _ := args.Get(0).(*domain.Project); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectSvc) requirement(args mock.Arguments) (*domain.ProjectRequirement, error) {
	if r, _ := args.Get(0).(*domain.ProjectRequirement); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectSvc) Create(ctx context.Context, designerID string, req project.CreateRequest) (*domain.Project, error) {
	return m.project(m.Called(ctx, designerID, req))
}
func (m *mockProjectSvc) Get(ctx context.Context, projectID string) (*domain.ProjectDetail, error) {
	args := m.Called(ctx, projectID)
	if d, _ := args.Get(0).(*domain.ProjectDetail); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProjectSvc) Update(ctx context.Context, projectID, userID string, req project.UpdateRequest) (*domain.Project, error) {
	return m.project(m.Called(ctx, projectID, userID, req))
}
func (m *mockProjectSvc) Delete(ctx context.Context, projectID, userID string) error {
	return m.Called(ctx, projectID, userID).Error(0)
}
func (m *mockProjectSvc) Close(ctx context.Context, projectID, userID string, status domain.ProjectStatus) (*domain.Project, error) {
	return m.project(m.Called(ctx, projectID, userID, status))
}
func (m *mockProjectSvc) DeleteFile(ctx context.Context, projectID, fileID, userID string) error {
	return m.Called(ctx, projectID, fileID, userID).Error(0)
}
func (m *mockProjectSvc) ListRequirements(ctx context.Context, projectID string) ([]domain.ProjectRequirement, error) {
	args := m.Called(ctx, projectID)
	reqs, _ := args.Get(0).([]domain.ProjectRequirement)
	return reqs, args.Error(1)
}
func (m *mockProjectSvc) CreateRequirement(ctx context.Context, projectID, userID string, req project.CreateRequirementRequest) (*domain.ProjectRequirement, error) {
	return m.requirement(m.Called(ctx, projectID, userID, req))
}
func (m *mockProjectSvc) UpdateRequirement(ctx context.Context, projectID, requirementID, userID string, req project.UpdateRequirementRequest) (*domain.ProjectRequirement, error) {
	return m.requirement(m.Called(ctx, projectID, requirementID, userID, req))
}
func (m *mockProjectSvc) DeleteRequirement(ctx context.Context, projectID, requirementID, userID string) error {
	return m.Called(ctx, projectID, requirementID, userID).Error(0)
}
func (m *mockProjectSvc) ApproveRequirement(ctx context.Context, projectID, requirementID, userID string) (*domain.ProjectRequirement, error) {
	return m.requirement(m.Called(ctx, projectID, requirementID, userID))
}

type mockBidSvc struct{ mock.Mock }

func (m *mockBidSvc) bid(args mock.Arguments) (*domain.Bid, error) {
	if b, _ := args.Get(0).(*domain.Bid); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBidSvc) Create(ctx context.Context, projectID, tailorID string, req bid.CreateRequest) (*domain.Bid, error) {
	return m.bid(m.Called(ctx, projectID, tailorID, req))
}
func (m *mockBidSvc) ListForProject(ctx context.Context, projectID, userID string) ([]domain.Bid, error) {
	args := m.Called(ctx, projectID, userID)
	bids, _ := args.Get(0).([]domain.Bid)
	return bids, args.Error(1)
}
func (m *mockBidSvc) Get(ctx context.Context, bidID, userID string) (*domain.Bid, error) {
	return m.bid(m.Called(ctx, bidID, userID))
}
func (m *mockBidSvc) Decide(ctx context.Context, bidID, userID string, decision domain.BidStatus) (*domain.Bid, error) {
	return m.bid(m.Called(ctx, bidID, userID, decision))
}
func (m *mockBidSvc) Withdraw(ctx context.Context, bidID, userID string) error {
	return m.Called(ctx, bidID, userID).Error(0)
}

type mockReviewSvc struct{ mock.Mock }

func (m *mockReviewSvc) List(ctx context.Context, target domain.ReviewTarget, targetID string) ([]domain.Review, error) {
	args := m.Called(ctx, target, targetID)
	reviews, _ := args.Get(0).([]domain.Review)
	return reviews, args.Error(1)
}
func (m *mockReviewSvc) Create(ctx context.Context, reviewerID string, req review.CreateRequest) (*domain.Review, error) {
	args := m.Called(ctx, reviewerID, req)
	if rv, _ := args.Get(0).(*domain.Review); rv != nil {
		return rv, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReviewSvc) Delete(ctx context.Context, reviewID, reviewerID string) error {
	return m.Called(ctx, reviewID, reviewerID).Error(0)
}

type mockPortfolioSvc struct{ mock.Mock }

func (m *mockPortfolioSvc) Get(ctx context.Context, userID string) (*domain.Portfolio, error) {
	args := m.Called(ctx, userID)
	if p, _ := args.Get(0).(*domain.Portfolio); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPortfolioSvc) Upsert(ctx context.Context, userID string, req portfolio.UpsertRequest) (*domain.Portfolio, error) {
	args := m.Called(ctx, userID, req)
	if p, _ := args.Get(0).(*domain.Portfolio); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPortfolioSvc) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
