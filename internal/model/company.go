package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Company struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:150;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Industry    string     `gorm:"size:100" json:"industry"`
	Size        string     `gorm:"size:50" json:"size"` // e.g. "1-10", "11-50", "51-200"
	Website     *string    `gorm:"size:255" json:"website,omitempty"`
	Location    string     `gorm:"size:150" json:"location"`
	LogoURL     *string    `gorm:"type:text" json:"logo_url,omitempty"`
	IsVerified  bool       `gorm:"default:false" json:"is_verified"`
	Features    StringList `gorm:"type:jsonb" json:"features,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Members []CompanyUser `gorm:"foreignKey:CompanyID" json:"members,omitempty"`
	Jobs    []Job         `gorm:"foreignKey:CompanyID" json:"jobs,omitempty"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

type CompanyReview struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_company_reviewer" json:"company_id"`
	Company     *Company  `gorm:"constraint:OnDelete:CASCADE" json:"company,omitempty"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_company_reviewer" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Rating      int       `gorm:"not null" json:"rating"` // 1-5
	Title       string    `gorm:"size:150" json:"title"`
	Body        string    `gorm:"type:text" json:"body"`
	IsAnonymous bool      `gorm:"default:false" json:"is_anonymous"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *CompanyReview) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
