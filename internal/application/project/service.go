package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atelier-api/internal/domain"
	"github.com/atelier-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, designerID string, req CreateRequest) (*domain.Project, error)
	Get(ctx context.Context, projectID string) (*domain.ProjectDetail, error)
	Update(ctx context.Context, projectID, userID string, req UpdateRequest) (*domain.Project, error)
	Delete(ctx context.Context, projectID, userID string) error
	Close(ctx context.Context, projectID, userID string, status domain.ProjectStatus) (*domain.Project, error)
	DeleteFile(ctx context.Context, projectID, fileID, userID string) error

	ListRequirements(ctx context.Context, projectID string) ([]domain.ProjectRequirement, error)
	CreateRequirement(ctx context.Context, projectID, userID string, req CreateRequirementRequest) (*domain.ProjectRequirement, error)
	UpdateRequirement(ctx context.Context, projectID, requirementID, userID string, req UpdateRequirementRequest) (*domain.ProjectRequirement, error)
	DeleteRequirement(ctx context.Context, projectID, requirementID, userID string) error
	ApproveRequirement(ctx context.Context, projectID, requirementID, userID string) (*domain.ProjectRequirement, error)
}

type FileInput struct {
	FileURL  string `json:"file_url" validate:"required,url"`
	FileType string `json:"file_type" validate:"omitempty,max=50"`
}

type CreateRequest struct {
	Title         string               `json:"title" validate:"required,max=200"`
	Description   string               `json:"description"`
	Budget        *float64             `json:"budget" validate:"omitempty,gte=0"`
	EstimatedTime string               `json:"estimated_time" validate:"omitempty,max=100"`
	Status        domain.ProjectStatus `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS COMPLETED CLOSED"`
	DesignID      *string              `json:"design_id" validate:"omitempty,max=64"`
	Files         []FileInput          `json:"files" validate:"omitempty,dive"`
}

// UpdateRequest changes the fields present. Files are appended to the
// project's existing files.
type UpdateRequest struct {
	Title         *string               `json:"title" validate:"omitempty,max=200"`
	Description   *string               `json:"description"`
	Budget        *float64              `json:"budget" validate:"omitempty,gte=0"`
	EstimatedTime *string               `json:"estimated_time" validate:"omitempty,max=100"`
	Status        *domain.ProjectStatus `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS COMPLETED CLOSED"`
	Files         []FileInput           `json:"files" validate:"omitempty,dive"`
}

type CloseRequest struct {
	Status domain.ProjectStatus `json:"status" validate:"required,oneof=COMPLETED CLOSED"`
}

type CreateRequirementRequest struct {
	Content          domain.JSONDoc `json:"content" validate:"required"`
	DesignerApproved bool           `json:"designer_approved"`
	TailorApproved   bool           `json:"tailor_approved"`
}

type UpdateRequirementRequest struct {
	Content          domain.JSONDoc `json:"content"`
	DesignerApproved *bool          `json:"designer_approved"`
	TailorApproved   *bool          `json:"tailor_approved"`
}

type projectStore interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, projectID string) (*domain.Project, error)
	Update(ctx context.Context, projectID string, updates map[string]interface{}, files []domain.ProjectFile) error
	Delete(ctx context.Context, projectID string) error
	GetFile(ctx context.Context, fileID string) (*domain.ProjectFile, error)
	DeleteFile(ctx context.Context, fileID string) error
	ListRequirements(ctx context.Context, projectID string) ([]domain.ProjectRequirement, error)
	GetRequirement(ctx context.Context, requirementID string) (*domain.ProjectRequirement, error)
	CreateRequirement(ctx context.Context, req *domain.ProjectRequirement) error
	UpdateRequirement(ctx context.Context, requirementID string, updates map[string]interface{}) error
	DeleteRequirement(ctx context.Context, requirementID string) error
}

type bidStore interface {
	FindApproved(ctx context.Context, projectID string) (*domain.Bid, error)
}

type reviewStore interface {
	ListByTarget(ctx context.Context, target domain.ReviewTarget, targetID string) ([]domain.Review, error)
}

type service struct {
	projects projectStore
	bids     bidStore
	reviews  reviewStore
	now      func() time.Time
}

type ServiceDeps struct {
	ProjectRepo projectStore
	BidRepo     bidStore
	ReviewRepo  reviewStore
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		projects: deps.ProjectRepo,
		bids:     deps.BidRepo,
		reviews:  deps.ReviewRepo,
		now:      now,
	}
}

func (s *service) Create(ctx context.Context, designerID string, req CreateRequest) (*domain.Project, error) {
	status := req.Status
	if status == "" {
		status = domain.ProjectOpen
	}
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status: %w", domain.ErrBadRequest)
	}
	now := s.now().UTC()
	p := &domain.Project{
		ID:            id.New(),
		DesignerID:    designerID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Budget:        req.Budget,
		EstimatedTime: req.EstimatedTime,
		Status:        status,
		DesignID:      req.DesignID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p.Files = s.files(p.ID, designerID, req.Files)
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	slog.Info("project created", "project_id", p.ID, "designer_id", designerID)
	return p, nil
}

func (s *service) Get(ctx context.Context, projectID string) (*domain.ProjectDetail, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByTarget(ctx, domain.TargetProject, projectID)
	if err != nil {
		return nil, err
	}
	return &domain.ProjectDetail{Project: p, Reviews: reviews}, nil
}

func (s *service) Update(ctx context.Context, projectID, userID string, req UpdateRequest) (*domain.Project, error) {
	if _, err := s.owned(ctx, projectID, userID, "update this project"); err != nil {
		return nil, err
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("invalid status: %w", domain.ErrBadRequest)
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[domain.FieldTitle] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates[domain.FieldDescription] = *req.Description
	}
	if req.Budget != nil {
		updates[domain.FieldBudget] = *req.Budget
	}
	if req.EstimatedTime != nil {
		updates[domain.FieldEstimatedTime] = *req.EstimatedTime
	}
	if req.Status != nil {
		updates[domain.FieldStatus] = *req.Status
	}
	files := s.files(projectID, userID, req.Files)
	if len(updates) > 0 || len(files) > 0 {
		if err := s.projects.Update(ctx, projectID, updates, files); err != nil {
			return nil, err
		}
	}
	return s.projects.Get(ctx, projectID)
}

func (s *service) Delete(ctx context.Context, projectID, userID string) error {
	if _, err := s.owned(ctx, projectID, userID, "delete this project"); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}
	slog.Info("project deleted", "project_id", projectID)
	return nil
}

// Close moves a project to one of its terminal statuses.
func (s *service) Close(ctx context.Context, projectID, userID string, status domain.ProjectStatus) (*domain.Project, error) {
	if _, err := s.owned(ctx, projectID, userID, "close this project"); err != nil {
		return nil, err
	}
	if status != domain.ProjectCompleted && status != domain.ProjectClosed {
		return nil, fmt.Errorf("invalid status: %w", domain.ErrBadRequest)
	}
	if err := s.projects.Update(ctx, projectID, map[string]interface{}{domain.FieldStatus: status}, nil); err != nil {
		return nil, err
	}
	slog.Info("project closed", "project_id", projectID, "status", status)
	return s.projects.Get(ctx, projectID)
}

func (s *service) DeleteFile(ctx context.Context, projectID, fileID, userID string) error {
	if _, err := s.owned(ctx, projectID, userID, "delete files"); err != nil {
		return err
	}
	f, err := s.projects.GetFile(ctx, fileID)
	if err != nil {
		return err
	}
	if f.ProjectID != projectID {
		return fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	return s.projects.DeleteFile(ctx, fileID)
}

func (s *service) ListRequirements(ctx context.Context, projectID string) ([]domain.ProjectRequirement, error) {
	return s.projects.ListRequirements(ctx, projectID)
}

func (s *service) CreateRequirement(ctx context.Context, projectID, userID string, req CreateRequirementRequest) (*domain.ProjectRequirement, error) {
	p, err := s.owned(ctx, projectID, userID, "create requirements")
	if err != nil {
		return nil, err
	}
	if p.Status != domain.ProjectOpen {
		return nil, fmt.Errorf("project requirements can only be added while status is OPEN: %w", domain.ErrBadRequest)
	}
	if !req.Content.IsObject() {
		return nil, fmt.Errorf("content must be a JSON object: %w", domain.ErrBadRequest)
	}
	now := s.now().UTC()
	r := &domain.ProjectRequirement{
		ID:               id.New(),
		ProjectID:        projectID,
		Content:          req.Content,
		DesignerApproved: req.DesignerApproved,
		TailorApproved:   req.TailorApproved,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.projects.CreateRequirement(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) UpdateRequirement(ctx context.Context, projectID, requirementID, userID string, req UpdateRequirementRequest) (*domain.ProjectRequirement, error) {
	p, err := s.owned(ctx, projectID, userID, "update requirements")
	if err != nil {
		return nil, err
	}
	if p.Status != domain.ProjectOpen {
		return nil, fmt.Errorf("project requirements can only be updated while status is OPEN: %w", domain.ErrBadRequest)
	}
	if _, err := s.requirementOf(ctx, projectID, requirementID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if len(req.Content) > 0 {
		if !req.Content.IsObject() {
			return nil, fmt.Errorf("content must be a JSON object: %w", domain.ErrBadRequest)
		}
		updates[domain.FieldContent] = req.Content
	}
	if req.DesignerApproved != nil {
		updates[domain.FieldDesignerApproved] = *req.DesignerApproved
	}
	if req.TailorApproved != nil {
		updates[domain.FieldTailorApproved] = *req.TailorApproved
	}
	if len(updates) > 0 {
		if err := s.projects.UpdateRequirement(ctx, requirementID, updates); err != nil {
			return nil, err
		}
	}
	return s.projects.GetRequirement(ctx, requirementID)
}

func (s *service) DeleteRequirement(ctx context.Context, projectID, requirementID, userID string) error {
	if _, err := s.owned(ctx, projectID, userID, "delete requirements"); err != nil {
		return err
	}
	if _, err := s.requirementOf(ctx, projectID, requirementID); err != nil {
		return err
	}
	return s.projects.DeleteRequirement(ctx, requirementID)
}

// ApproveRequirement records the caller's sign-off. The designer sets
// designer_approved; the tailor whose bid was approved sets tailor_approved.
func (s *service) ApproveRequirement(ctx context.Context, projectID, requirementID, userID string) (*domain.ProjectRequirement, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requirementOf(ctx, projectID, requirementID); err != nil {
		return nil, err
	}

	field := domain.FieldDesignerApproved
	if p.DesignerID != userID {
		bid, err := s.bids.FindApproved(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if bid == nil || bid.TailorID != userID {
			return nil, fmt.Errorf("only the designer or assigned tailor can approve: %w", domain.ErrForbidden)
		}
		field = domain.FieldTailorApproved
	}
	if err := s.projects.UpdateRequirement(ctx, requirementID, map[string]interface{}{field: true}); err != nil {
		return nil, err
	}
	return s.projects.GetRequirement(ctx, requirementID)
}

// owned loads a project and checks userID is its designer.
func (s *service) owned(ctx context.Context, projectID, userID, action string) (*domain.Project, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.DesignerID != userID {
		return nil, fmt.Errorf("only the owner can %s: %w", action, domain.ErrForbidden)
	}
	return p, nil
}

func (s *service) requirementOf(ctx context.Context, projectID, requirementID string) (*domain.ProjectRequirement, error) {
	r, err := s.projects.GetRequirement(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	if r.ProjectID != projectID {
		return nil, fmt.Errorf("requirement not found: %w", domain.ErrNotFound)
	}
	return r, nil
}

func (s *service) files(projectID, uploadedBy string, in []FileInput) []domain.ProjectFile {
	if len(in) == 0 {
		return nil
	}
	now := s.now().UTC()
	files := make([]domain.ProjectFile, 0, len(in))
	for _, f := range in {
		files = append(files, domain.ProjectFile{
			ID:         id.New(),
			ProjectID:  projectID,
			FileURL:    f.FileURL,
			FileType:   f.FileType,
			UploadedBy: uploadedBy,
			CreatedAt:  now,
		})
	}
	return files
}
