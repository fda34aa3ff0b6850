package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
	JobStatusDraft  = "draft"
)

const (
	EmploymentFullTime   = "full_time"
	EmploymentPartTime   = "part_time"
	EmploymentContract   = "contract"
	EmploymentInternship = "internship"
)

type Job struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_id"`
	Company        *Company   `gorm:"constraint:OnDelete:CASCADE" json:"company,omitempty"`
	PostedByID     uuid.UUID  `gorm:"type:uuid;not null" json:"posted_by_id"`
	PostedBy       *User      `gorm:"foreignKey:PostedByID" json:"posted_by,omitempty"`
	Title          string     `gorm:"size:200;not null" json:"title"`
	Description    string     `gorm:"type:text;not null" json:"description"`
	Requirements   string     `gorm:"type:text" json:"requirements"`
	Location       string     `gorm:"size:150" json:"location"`
	EmploymentType string     `gorm:"size:20;not null;default:full_time" json:"employment_type"`
	SalaryMin      *int       `json:"salary_min,omitempty"`
	SalaryMax      *int       `json:"salary_max,omitempty"`
	Status         string     `gorm:"size:20;not null;default:open;index" json:"status"`
	Skills         StringList `gorm:"type:jsonb" json:"skills,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID, err = uuid.NewV7()
	}
	return
}

const (
	ApplicationPending   = "pending"
	ApplicationReviewed  = "reviewed"
	ApplicationInterview = "interview"
	ApplicationRejected  = "rejected"
	ApplicationAccepted  = "accepted"
)

type Application struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	JobID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_job_candidate" json:"job_id"`
	Job         *Job       `gorm:"constraint:OnDelete:CASCADE" json:"job,omitempty"`
	CandidateID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_job_candidate" json:"candidate_id"`
	Candidate   *User      `gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE" json:"candidate,omitempty"`
	ResumeID    *uuid.UUID `gorm:"type:uuid" json:"resume_id,omitempty"`
	Resume      *Resume    `gorm:"constraint:OnDelete:SET NULL" json:"resume,omitempty"`
	CoverLetter string     `gorm:"type:text" json:"cover_letter"`
	Status      string     `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

type SavedJob struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_saved_job" json:"user_id"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_saved_job" json:"job_id"`
	Job       *Job      `gorm:"constraint:OnDelete:CASCADE" json:"job,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *SavedJob) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
