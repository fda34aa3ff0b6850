package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Evaluation is an employer's rating of a candidate for a specific job.
type Evaluation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EvaluatorID uuid.UUID `gorm:"type:uuid;not null" json:"evaluator_id"`
	Evaluator   *User     `gorm:"foreignKey:EvaluatorID;constraint:OnDelete:CASCADE" json:"evaluator,omitempty"`
	CandidateID uuid.UUID `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Candidate   *User     `gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE" json:"candidate,omitempty"`
	JobID       uuid.UUID `gorm:"type:uuid;not null" json:"job_id"`
	Job         *Job      `gorm:"constraint:OnDelete:CASCADE" json:"job,omitempty"`
	Score       int       `gorm:"not null" json:"score"` // 1-5
	Comment     string    `gorm:"type:text" json:"comment"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (e *Evaluation) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	return
}

const (
	PlanFree    = "free"
	PlanBasic   = "basic"
	PlanPremium = "premium"
)

const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

type Subscription struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Plan      string     `gorm:"size:20;not null;default:free" json:"plan"`
	Status    string     `gorm:"size:20;not null;default:active" json:"status"`
	StartsAt  time.Time  `json:"starts_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

// AdminLog records every mutating admin action for auditing.
type AdminLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AdminID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"admin_id"`
	Admin      *User      `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	Action     string     `gorm:"size:100;not null" json:"action"`
	TargetType string     `gorm:"size:50" json:"target_type"`
	TargetID   *uuid.UUID `gorm:"type:uuid" json:"target_id,omitempty"`
	Detail     string     `gorm:"type:text" json:"detail"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (l *AdminLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}
