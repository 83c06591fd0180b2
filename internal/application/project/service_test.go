package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atelier-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProjectStore struct{ mock.Mock }

func (m *mockProjectStore) Create(ctx context.Context, p *domain.Project) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockProjectStore) Get(ctx context.Context, projectID string) (*domain.Project, error) {
	args := m.Called(ctx, projectID)
	if p, _ := args.Get(0).(*domain.Project); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProjectStore) Update(ctx context.Context, projectID string, updates map[string]interface{}, files []domain.ProjectFile) error {
	return m.Called(ctx, projectID, updates, files).Error(0)
}
func (m *mockProjectStore) Delete(ctx context.Context, projectID string) error {
	return m.Called(ctx, projectID).Error(0)
}
func (m *mockProjectStore) GetFile(ctx context.Context, fileID string) (*domain.ProjectFile, error) {
	args := m.Called(ctx, fileID)
	if f, _ := args.Get(0).(*domain.ProjectFile); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProjectStore) DeleteFile(ctx context.Context, fileID string) error {
	return m.Called(ctx, fileID).Error(0)
}
func (m *mockProjectStore) ListRequirements(ctx context.Context, projectID string) ([]domain.ProjectRequirement, error) {
	args := m.Called(ctx, projectID)
	reqs, _ := args.Get(0).([]domain.ProjectRequirement)
	return reqs, args.Error(1)
}
func (m *mockProjectStore) GetRequirement(ctx context.Context, requirementID string) (*domain.ProjectRequirement, error) {
	args := m.Called(ctx, requirementID)
	if r, _ := args.Get(0).(*domain.ProjectRequirement); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProjectStore) CreateRequirement(ctx context.Context, req *domain.ProjectRequirement) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockProjectStore) UpdateRequirement(ctx context.Context, requirementID string, updates map[string]interface{}) error {
	return m.Called(ctx, requirementID, updates).Error(0)
}
func (m *mockProjectStore) DeleteRequirement(ctx context.Context, requirementID string) error {
	return m.Called(ctx, requirementID).Error(0)
}

type mockBidStore struct{ mock.Mock }

func (m *mockBidStore) FindApproved(ctx context.Context, projectID string) (*domain.Bid, error) {
	args := m.Called(ctx, projectID)
	if b, _ := args.Get(0).(*domain.Bid); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockReviewStore struct{ mock.Mock }

func (m *mockReviewStore) ListByTarget(ctx context.Context, target domain.ReviewTarget, targetID string) ([]domain.Review, error) {
	args := m.Called(ctx, target, targetID)
	reviews, _ := args.Get(0).([]domain.Review)
	return reviews, args.Error(1)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	projects *mockProjectStore
	bids     *mockBidStore
	reviews  *mockReviewStore
	svc      Service
}

func newFixture() *fixture {
	f := &fixture{projects: &mockProjectStore{}, bids: &mockBidStore{}, reviews: &mockReviewStore{}}
	f.svc = NewService(ServiceDeps{
		ProjectRepo: f.projects,
		BidRepo:     f.bids,
		ReviewRepo:  f.reviews,
		Now:         func() time.Time { return fixedNow },
	})
	return f
}

func project(status domain.ProjectStatus) *domain.Project {
	return &domain.Project{ID: "p1", DesignerID: "designer", Title: "Summer dress", Status: status}
}

func TestCreate_DefaultsToOpenAndAttachesFiles(t *testing.T) {
	f := newFixture()
	f.projects.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Project) bool {
		return p.Status == domain.ProjectOpen &&
			p.DesignerID == "designer" &&
			len(p.Files) == 1 &&
			p.Files[0].ProjectID == p.ID &&
			p.Files[0].UploadedBy == "designer"
	})).Return(nil)

	p, err := f.svc.Create(context.Background(), "designer", CreateRequest{
		Title: "  Summer dress ",
		Files: []FileInput{{FileURL: "https://cdn.test/sketch.pdf", FileType: "pdf"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Summer dress", p.Title)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, fixedNow, p.CreatedAt)
	f.projects.AssertExpectations(t)
}

func TestCreate_RejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), "designer", CreateRequest{Title: "x", Status: "ARCHIVED"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	f.projects.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGet_IncludesProjectReviews(t *testing.T) {
	f := newFixture()
	f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)
	f.reviews.On("ListByTarget", mock.Anything, domain.TargetProject, "p1").Return([]domain.Review{{ID: "r1", Rating: 5}}, nil)

	d, err := f.svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", d.ID)
	require.Len(t, d.Reviews, 1)
	assert.Equal(t, 5, d.Reviews[0].Rating)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	f := newFixture()
	f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)

	title := "Mine now"
	_, err := f.svc.Update(context.Background(), "p1", "someone-else", UpdateRequest{Title: &title})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	f.projects.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_WritesProvidedFieldsAndAppendsFiles(t *testing.T) {
	f := newFixture()
	f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)
	status := domain.ProjectInProgress
	budget := 250.0
	f.projects.On("Update", mock.Anything, "p1",
		map[string]interface{}{domain.FieldStatus: status, domain.FieldBudget: budget},
		mock.MatchedBy(func(files []domain.ProjectFile) bool {
			return len(files) == 1 && files[0].FileURL == "https://cdn.test/b.png" && files[0].ProjectID == "p1"
		})).Return(nil)

	_, err := f.svc.Update(context.Background(), "p1", "designer", UpdateRequest{
		Status: &status,
		Budget: &budget,
		Files:  []FileInput{{FileURL: "https://cdn.test/b.png"}},
	})
	require.NoError(t, err)
	f.projects.AssertExpectations(t)
}

func TestUpdate_EmptyRequestSkipsWrite(t *testing.T) {
	f := newFixture()
	f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)

	_, err := f.svc.Update(context.Background(), "p1", "designer", UpdateRequest{})
	require.NoError(t, err)
	f.projects.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClose(t *testing.T) {
	t.Run("terminal status", func(t *testing.T) {
		f := newFixture()
		f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectInProgress), nil)
		f.projects.On("Update", mock.Anything, "p1",
			map[string]interface{}{domain.FieldStatus: domain.ProjectCompleted}, []domain.ProjectFile(nil)).Return(nil)

		_, err := f.svc.Close(context.Background(), "p1", "designer", domain.ProjectCompleted)
		require.NoError(t, err)
		f.projects.AssertExpectations(t)
	})

	t.Run("non-terminal status", func(t *testing.T) {
		f := newFixture()
		f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)

		_, err := f.svc.Close(context.Background(), "p1", "designer", domain.ProjectInProgress)
		assert.True(t, errors.Is(err, domain.ErrBadRequest))
	})

	t.Run("not owner", func(t *testing.T) {
		f := newFixture()
		f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)

		_, err := f.svc.Close(context.Background(), "p1", "tailor", domain.ProjectClosed)
		assert.True(t, errors.Is(err, domain.ErrForbidden))
	})
}

func TestDelete(t *testing.T) {
	f := newFixture()
	f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)
	f.projects.On("Delete", mock.Anything, "p1").Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), "p1", "designer"))
	f.projects.AssertExpectations(t)
}

func TestDeleteFile_MustBelongToProject(t *testing.T) {
	f := newFixture()
	f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)
	f.projects.On("GetFile", mock.Anything, "f1").Return(&domain.ProjectFile{ID: "f1", ProjectID: "p2"}, nil)

	err := f.svc.DeleteFile(context.Background(), "p1", "f1", "designer")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	f.projects.AssertNotCalled(t, "DeleteFile", mock.Anything, mock.Anything)
}

func TestCreateRequirement(t *testing.T) {
	t.Run("open project", func(t *testing.T) {
		f := newFixture()
		f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)
		f.projects.On("CreateRequirement", mock.Anything, mock.MatchedBy(func(r *domain.ProjectRequirement) bool {
			return r.ProjectID == "p1" && !r.DesignerApproved && string(r.Content) == `{"items":["fabric"]}`
		})).Return(nil)

		r, err := f.svc.CreateRequirement(context.Background(), "p1", "designer", CreateRequirementRequest{
			Content: domain.JSONDoc(`{"items":["fabric"]}`),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, r.ID)
	})

	t.Run("project not open", func(t *testing.T) {
		f := newFixture()
		f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectInProgress), nil)

		_, err := f.svc.CreateRequirement(context.Background(), "p1", "designer", CreateRequirementRequest{
			Content: domain.JSONDoc(`{"a":1}`),
		})
		assert.True(t, errors.Is(err, domain.ErrBadRequest))
		assert.ErrorContains(t, err, "only be added while status is OPEN")
	})

	t.Run("content not an object", func(t *testing.T) {
		f := newFixture()
		f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)

		_, err := f.svc.CreateRequirement(context.Background(), "p1", "designer", CreateRequirementRequest{
			Content: domain.JSONDoc(`["fabric"]`),
		})
		assert.True(t, errors.Is(err, domain.ErrBadRequest))
	})
}

func TestUpdateRequirement_WrongProject(t *testing.T) {
	f := newFixture()
	f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)
	f.projects.On("GetRequirement", mock.Anything, "r1").Return(&domain.ProjectRequirement{ID: "r1", ProjectID: "p2"}, nil)

	yes := true
	_, err := f.svc.UpdateRequirement(context.Background(), "p1", "r1", "designer", UpdateRequirementRequest{DesignerApproved: &yes})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	f.projects.AssertNotCalled(t, "UpdateRequirement", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteRequirement(t *testing.T) {
	f := newFixture()
	f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectCompleted), nil)
	f.projects.On("GetRequirement", mock.Anything, "r1").Return(&domain.ProjectRequirement{ID: "r1", ProjectID: "p1"}, nil)
	f.projects.On("DeleteRequirement", mock.Anything, "r1").Return(nil)

	require.NoError(t, f.svc.DeleteRequirement(context.Background(), "p1", "r1", "designer"))
	f.projects.AssertExpectations(t)
}

func TestApproveRequirement(t *testing.T) {
	req := &domain.ProjectRequirement{ID: "r1", ProjectID: "p1"}

	t.Run("designer", func(t *testing.T) {
		f := newFixture()
		f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)
		f.projects.On("GetRequirement", mock.Anything, "r1").Return(req, nil)
		f.projects.On("UpdateRequirement", mock.Anything, "r1", map[string]interface{}{domain.FieldDesignerApproved: true}).Return(nil)

		_, err := f.svc.ApproveRequirement(context.Background(), "p1", "r1", "designer")
		require.NoError(t, err)
		f.bids.AssertNotCalled(t, "FindApproved", mock.Anything, mock.Anything)
	})

	t.Run("assigned tailor", func(t *testing.T) {
		f := newFixture()
		f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)
		f.projects.On("GetRequirement", mock.Anything, "r1").Return(req, nil)
		f.bids.On("FindApproved", mock.Anything, "p1").Return(&domain.Bid{TailorID: "tailor", Status: domain.BidApproved}, nil)
		f.projects.On("UpdateRequirement", mock.Anything, "r1", map[string]interface{}{domain.FieldTailorApproved: true}).Return(nil)

		_, err := f.svc.ApproveRequirement(context.Background(), "p1", "r1", "tailor")
		require.NoError(t, err)
		f.projects.AssertExpectations(t)
	})

	t.Run("no approved bid", func(t *testing.T) {
		f := newFixture()
		f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)
		f.projects.On("GetRequirement", mock.Anything, "r1").Return(req, nil)
		f.bids.On("FindApproved", mock.Anything, "p1").Return(nil, nil)

		_, err := f.svc.ApproveRequirement(context.Background(), "p1", "r1", "tailor")
		assert.True(t, errors.Is(err, domain.ErrForbidden))
	})

	t.Run("other tailor", func(t *testing.T) {
		f := newFixture()
		f.projects.On("Get", mock.Anything, "p1").Return(project(domain.ProjectOpen), nil)
		f.projects.On("GetRequirement", mock.Anything, "r1").Return(req, nil)
		f.bids.On("FindApproved", mock.Anything, "p1").Return(&domain.Bid{TailorID: "tailor"}, nil)

		_, err := f.svc.ApproveRequirement(context.Background(), "p1", "r1", "intruder")
		assert.True(t, errors.Is(err, domain.ErrForbidden))
		f.projects.AssertNotCalled(t, "UpdateRequirement", mock.Anything, mock.Anything, mock.Anything)
	})
}
