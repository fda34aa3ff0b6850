package repository

import (
	"context"

	"ajil.mn/jobmarket/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRepository interface {
	// FindOrCreateRoom looks up the room by its (employer, candidate, job)
	// triple and creates it with status active when absent.
	FindOrCreateRoom(ctx context.Context, employerID, candidateID, jobID uuid.UUID) (*model.ChatRoom, bool, error)
	FindRoomByID(ctx context.Context, id uuid.UUID) (*model.ChatRoom, error)
	FindRoomsForUser(ctx context.Context, userID uuid.UUID) ([]*model.ChatRoom, error)
	UpdateRoom(ctx context.Context, room *model.ChatRoom) error

	CreateMessage(ctx context.Context, message *model.ChatMessage) error
	FindMessages(ctx context.Context, roomID uuid.UUID, offset, limit int) ([]*model.ChatMessage, error)
	FindMessageByID(ctx context.Context, id uuid.UUID) (*model.ChatMessage, error)
	MarkMessagesRead(ctx context.Context, roomID, readerID uuid.UUID) error
	SoftDeleteMessage(ctx context.Context, id uuid.UUID) error
	CountUnread(ctx context.Context, roomID, userID uuid.UUID) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) FindOrCreateRoom(ctx context.Context, employerID, candidateID, jobID uuid.UUID) (*model.ChatRoom, bool, error) {
	var room model.ChatRoom
	err := r.db.WithContext(ctx).
		Where("employer_id = ? AND candidate_id = ? AND job_id = ?", employerID, candidateID, jobID).
		First(&room).Error
	if err == nil {
		return &room, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	room = model.ChatRoom{
		EmployerID:  employerID,
		CandidateID: candidateID,
		JobID:       jobID,
		Status:      model.RoomStatusActive,
	}

	// The unique index on the triple backs the lookup up under races:
	// a concurrent creator wins and we re-read its row.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&room).Error; err != nil {
		return nil, false, err
	}

	if room.ID == uuid.Nil {
		if err := r.db.WithContext(ctx).
			Where("employer_id = ? AND candidate_id = ? AND job_id = ?", employerID, candidateID, jobID).
			First(&room).Error; err != nil {
			return nil, false, err
		}
		return &room, false, nil
	}

	return &room, true, nil
}

func (r *chatRepository) FindRoomByID(ctx context.Context, id uuid.UUID) (*model.ChatRoom, error) {
	var room model.ChatRoom
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&room).Error; err != nil {
		return nil, err
	}

	return &room, nil
}

func (r *chatRepository) FindRoomsForUser(ctx context.Context, userID uuid.UUID) ([]*model.ChatRoom, error) {
	var rooms []*model.ChatRoom
	if err := r.db.WithContext(ctx).
		Preload("Employer", selectUserSummary).
		Preload("Candidate", selectUserSummary).
		Preload("Job", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "company_id")
		}).
		Where("(employer_id = ? AND employer_deleted = ?) OR (candidate_id = ? AND candidate_deleted = ?)",
			userID, false, userID, false).
		Order("updated_at DESC").
		Find(&rooms).Error; err != nil {
		return nil, err
	}

	return rooms, nil
}

func selectUserSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "first_name", "last_name", "avatar_url")
}

func (r *chatRepository) UpdateRoom(ctx context.Context, room *model.ChatRoom) error {
	return r.db.WithContext(ctx).Save(room).Error
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) FindMessages(ctx context.Context, roomID uuid.UUID, offset, limit int) ([]*model.ChatMessage, error) {
	var messages []*model.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("room_id = ? AND is_deleted = ?", roomID, false).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *chatRepository) FindMessageByID(ctx context.Context, id uuid.UUID) (*model.ChatMessage, error) {
	var message model.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&message).Error; err != nil {
		return nil, err
	}

	return &message, nil
}

func (r *chatRepository) MarkMessagesRead(ctx context.Context, roomID, readerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Where("room_id = ? AND sender_id <> ? AND is_read = ?", roomID, readerID, false).
		Update("is_read", true).Error
}

func (r *chatRepository) SoftDeleteMessage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

func (r *chatRepository) CountUnread(ctx context.Context, roomID, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Where("room_id = ? AND sender_id <> ? AND is_read = ? AND is_deleted = ?", roomID, userID, false, false).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
