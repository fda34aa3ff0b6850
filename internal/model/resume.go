package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resume holds a candidate's resume. The structured sections (basic info,
// skills, portfolio, education, work history) are semi-structured documents
// edited as a whole by the client, so they live in jsonb columns.
type Resume struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Title  string    `gorm:"size:150;not null" json:"title"`
	// IsDefault marks the resume used for quick-apply. At most one per user;
	// maintained by ResumeRepository.SetDefault inside a transaction.
	IsDefault      bool      `gorm:"default:false;index" json:"is_default"`
	BasicInfo      JSONMap   `gorm:"type:jsonb" json:"basic_info,omitempty"`
	SkillsInfo     JSONMap   `gorm:"type:jsonb" json:"skills_info,omitempty"`
	Portfolio      JSONMap   `gorm:"type:jsonb" json:"portfolio,omitempty"`
	Education      JSONMap   `gorm:"type:jsonb" json:"education,omitempty"`
	WorkHistory    JSONMap   `gorm:"type:jsonb" json:"work_history,omitempty"`
	AdditionalInfo JSONMap   `gorm:"type:jsonb" json:"additional_info,omitempty"`
	// FileURL points at the uploaded source document (pdf or doc), if any.
	FileURL   *string   `gorm:"size:500" json:"file_url,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Resume) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
