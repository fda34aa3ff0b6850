package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoomStatusActive        = "active"
	RoomStatusClosed        = "closed"
	RoomStatusPendingReopen = "pending_reopen"
)

// ChatRoom is identified by the (employer, candidate, job) triple.
// Status transitions: active -> closed -> pending_reopen -> active.
// The per-party hide flags are independent of status.
type ChatRoom struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EmployerID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_room_triple" json:"employer_id"`
	Employer            *User      `gorm:"foreignKey:EmployerID;constraint:OnDelete:CASCADE" json:"employer,omitempty"`
	CandidateID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_room_triple" json:"candidate_id"`
	Candidate           *User      `gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE" json:"candidate,omitempty"`
	JobID               uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_room_triple" json:"job_id"`
	Job                 *Job       `gorm:"constraint:OnDelete:CASCADE" json:"job,omitempty"`
	Status              string     `gorm:"size:20;not null;default:active" json:"status"`
	ClosedByID          *uuid.UUID `gorm:"type:uuid" json:"closed_by_id,omitempty"`
	ReopenRequestedByID *uuid.UUID `gorm:"type:uuid" json:"reopen_requested_by_id,omitempty"`
	EmployerDeleted     bool       `gorm:"default:false" json:"employer_deleted"`
	CandidateDeleted    bool       `gorm:"default:false" json:"candidate_deleted"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *ChatRoom) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// HasParticipant reports whether the user is a party of the room.
func (r *ChatRoom) HasParticipant(userID uuid.UUID) bool {
	return r.EmployerID == userID || r.CandidateID == userID
}

type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID    uuid.UUID `gorm:"type:uuid;not null;index" json:"room_id"`
	Room      *ChatRoom `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"-"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Sender    *User     `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	IsDeleted bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
