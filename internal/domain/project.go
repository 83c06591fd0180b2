package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ProjectStatus is the lifecycle state of a project posting.
type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "OPEN"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectCompleted  ProjectStatus = "COMPLETED"
	ProjectClosed     ProjectStatus = "CLOSED"
)

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectOpen, ProjectInProgress, ProjectCompleted, ProjectClosed:
		return true
	}
	return false
}

// Column names used in project and requirement update maps.
const (
	FieldTitle            = "title"
	FieldDescription      = "description"
	FieldBudget           = "budget"
	FieldEstimatedTime    = "estimated_time"
	FieldStatus           = "status"
	FieldContent          = "content"
	FieldDesignerApproved = "designer_approved"
	FieldTailorApproved   = "tailor_approved"
)

// Project is a design posted by a designer for tailors to bid on.
type Project struct {
	ID            string               `json:"id" gorm:"primaryKey;size:26"`
	DesignerID    string               `json:"designer_id" gorm:"size:26;not null;index"`
	Title         string               `json:"title" gorm:"size:200;not null"`
	Description   string               `json:"description"`
	Budget        *float64             `json:"budget,omitempty" gorm:"type:numeric(12,2)"`
	EstimatedTime string               `json:"estimated_time,omitempty" gorm:"size:100"`
	Status        ProjectStatus        `json:"status" gorm:"size:20;not null;default:'OPEN';index"`
	DesignID      *string              `json:"design_id,omitempty" gorm:"size:64"`
	Files         []ProjectFile        `json:"files" gorm:"foreignKey:ProjectID"`
	Requirements  []ProjectRequirement `json:"requirements,omitempty" gorm:"foreignKey:ProjectID"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// ProjectFile is a reference to an already uploaded file attached to a project.
type ProjectFile struct {
	ID         string    `json:"id" gorm:"primaryKey;size:26"`
	ProjectID  string    `json:"project_id" gorm:"size:26;not null;index"`
	FileURL    string    `json:"file_url" gorm:"not null"`
	FileType   string    `json:"file_type,omitempty" gorm:"size:50"`
	UploadedBy string    `json:"uploaded_by" gorm:"size:26;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProjectRequirement is a free-form requirement both sides sign off on.
type ProjectRequirement struct {
	ID               string    `json:"id" gorm:"primaryKey;size:26"`
	ProjectID        string    `json:"project_id" gorm:"size:26;not null;index"`
	Content          JSONDoc   `json:"content" gorm:"type:jsonb;not null"`
	DesignerApproved bool      `json:"designer_approved" gorm:"not null;default:false"`
	TailorApproved   bool      `json:"tailor_approved" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProjectDetail is a project with the reviews left on it.
type ProjectDetail struct {
	*Project
	Reviews []Review `json:"reviews"`
}

// JSONDoc is an arbitrary JSON value stored in a jsonb column.
type JSONDoc json.RawMessage

func (d JSONDoc) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

func (d *JSONDoc) UnmarshalJSON(b []byte) error {
	*d = append((*d)[:0], b...)
	return nil
}

func (d JSONDoc) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return string(d), nil
}

func (d *JSONDoc) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = nil
	case []byte:
		*d = append((*d)[:0], v...)
	case string:
		*d = JSONDoc(v)
	default:
		return errors.New("unsupported jsonb source type")
	}
	return nil
}

// IsObject reports whether d holds a JSON object.
func (d JSONDoc) IsObject() bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(d, &m) == nil && m != nil
}
