package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UserTypeCandidate = "candidate"
	UserTypeEmployer  = "employer"
	UserTypeAdmin     = "admin"
)

const (
	NationalityMongolian = "mongolian"
	NationalityForeign   = "foreign"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	UserType     string    `gorm:"size:20;not null;default:candidate" json:"user_type"`
	// Role is a legacy column kept alongside UserType; either one saying
	// "admin" grants admin. See TokenService.Generate.
	Role *string `gorm:"size:20" json:"role,omitempty"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	Phone        *string   `gorm:"size:30" json:"phone,omitempty"`
	Nationality  string    `gorm:"size:20;default:mongolian" json:"nationality"`
	// RegistryNumber is the Mongolian national registry number, unique per citizen.
	RegistryNumber *string    `gorm:"size:20;uniqueIndex" json:"registry_number,omitempty"`
	PassportNumber *string    `gorm:"size:30" json:"passport_number,omitempty"`
	Skills         StringList `gorm:"type:jsonb" json:"skills,omitempty"`
	Preferences    JSONMap    `gorm:"type:jsonb" json:"preferences,omitempty"`
	AvatarURL      *string    `gorm:"type:text" json:"avatar_url,omitempty"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Resumes   []Resume      `gorm:"foreignKey:UserID" json:"resumes,omitempty"`
	Companies []CompanyUser `gorm:"foreignKey:UserID" json:"companies,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

const (
	CompanyRoleAdmin  = "admin"
	CompanyRoleEditor = "editor"
	CompanyRoleViewer = "viewer"
	CompanyRoleMember = "member"
)

// CompanyUser links a user account to a company profile with a role.
// At most one row per user carries IsPrimary; the flag is only written
// inside the registration/join transaction.
type CompanyUser struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_company_user" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_company_user" json:"company_id"`
	Company   *Company  `gorm:"constraint:OnDelete:CASCADE" json:"company,omitempty"`
	Role      string    `gorm:"size:20;not null;default:member" json:"role"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (cu *CompanyUser) BeforeCreate(tx *gorm.DB) (err error) {
	if cu.ID == uuid.Nil {
		cu.ID, err = uuid.NewV7()
	}
	return
}
