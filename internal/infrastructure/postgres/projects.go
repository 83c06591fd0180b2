package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelier-api/internal/domain"
	"github.com/atelier-api/internal/pkg/id"
	"gorm.io/gorm"
)

// ProjectRepo stores projects with their files and requirements.
type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// Create inserts p together with any files it carries.
func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return translate(err, "project")
	}
	return nil
}

// Get loads a project with its files and requirements.
func (r *ProjectRepo) Get(ctx context.Context, projectID string) (*domain.Project, error) {
	if !id.Valid(projectID) {
		return nil, fmt.Errorf("project not found: %w", domain.ErrNotFound)
	}
	var p domain.Project
	err := r.db.WithContext(ctx).
		Preload("Files").
		Preload("Requirements").
		First(&p, "id = ?", projectID).Error
	if err != nil {
		return nil, translate(err, "project")
	}
	return &p, nil
}

// Update applies a partial column update and appends files, in one transaction.
func (r *ProjectRepo) Update(ctx context.Context, projectID string, updates map[string]interface{}, files []domain.ProjectFile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			res := tx.Model(&domain.Project{}).Where("id = ?", projectID).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("project not found: %w", domain.ErrNotFound)
			}
		}
		if len(files) > 0 {
			if err := tx.Create(&files).Error; err != nil {
				return translate(err, "project file")
			}
		}
		return nil
	})
}

// Delete removes a project and everything hanging off it. Reviews of the
// project are kept.
func (r *ProjectRepo) Delete(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&domain.ProjectFile{}, &domain.ProjectRequirement{}, &domain.Bid{}} {
			if err := tx.Where("project_id = ?", projectID).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&domain.Project{}, "id = ?", projectID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("project not found: %w", domain.ErrNotFound)
		}
		return nil
	})
}

func (r *ProjectRepo) GetFile(ctx context.Context, fileID string) (*domain.ProjectFile, error) {
	if !id.Valid(fileID) {
		return nil, fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	var f domain.ProjectFile
	if err := r.db.WithContext(ctx).First(&f, "id = ?", fileID).Error; err != nil {
		return nil, translate(err, "file")
	}
	return &f, nil
}

func (r *ProjectRepo) DeleteFile(ctx context.Context, fileID string) error {
	return deleteByID(ctx, r.db, &domain.ProjectFile{}, fileID, "file")
}

func (r *ProjectRepo) ListRequirements(ctx context.Context, projectID string) ([]domain.ProjectRequirement, error) {
	reqs := []domain.ProjectRequirement{}
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at").
		Find(&reqs).Error
	return reqs, err
}

func (r *ProjectRepo) GetRequirement(ctx context.Context, requirementID string) (*domain.ProjectRequirement, error) {
	if !id.Valid(requirementID) {
		return nil, fmt.Errorf("requirement not found: %w", domain.ErrNotFound)
	}
	var req domain.ProjectRequirement
	if err := r.db.WithContext(ctx).First(&req, "id = ?", requirementID).Error; err != nil {
		return nil, translate(err, "requirement")
	}
	return &req, nil
}

func (r *ProjectRepo) CreateRequirement(ctx context.Context, req *domain.ProjectRequirement) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return translate(err, "requirement")
	}
	return nil
}

func (r *ProjectRepo) UpdateRequirement(ctx context.Context, requirementID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return errors.New("no fields to update")
	}
	res := r.db.WithContext(ctx).Model(&domain.ProjectRequirement{}).Where("id = ?", requirementID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("requirement not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *ProjectRepo) DeleteRequirement(ctx context.Context, requirementID string) error {
	return deleteByID(ctx, r.db, &domain.ProjectRequirement{}, requirementID, "requirement")
}

// deleteByID removes one row of model's table, reporting a missing row as
// domain.ErrNotFound.
func deleteByID(ctx context.Context, db *gorm.DB, model interface{}, rowID, entity string) error {
	res := db.WithContext(ctx).Delete(model, "id = ?", rowID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s not found: %w", entity, domain.ErrNotFound)
	}
	return nil
}
