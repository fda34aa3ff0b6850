package repository

import (
	"context"

	"ajil.mn/jobmarket/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResumeRepository interface {
	Create(ctx context.Context, resume *model.Resume) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Resume, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*model.Resume, error)
	FindDefault(ctx context.Context, userID uuid.UUID) (*model.Resume, error)
	Update(ctx context.Context, resume *model.Resume) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SetDefault clears every default flag the user owns and sets the target
	// in one transaction, so two concurrent calls cannot leave zero or two
	// defaults behind.
	SetDefault(ctx context.Context, userID, resumeID uuid.UUID) error
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(ctx context.Context, resume *model.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

func (r *resumeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Resume, error) {
	var resume model.Resume
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&resume).Error; err != nil {
		return nil, err
	}

	return &resume, nil
}

func (r *resumeRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*model.Resume, error) {
	var resumes []*model.Resume
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&resumes).Error; err != nil {
		return nil, err
	}

	return resumes, nil
}

func (r *resumeRepository) FindDefault(ctx context.Context, userID uuid.UUID) (*model.Resume, error) {
	var resume model.Resume
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&resume).Error; err != nil {
		return nil, err
	}

	return &resume, nil
}

func (r *resumeRepository) Update(ctx context.Context, resume *model.Resume) error {
	return r.db.WithContext(ctx).Save(resume).Error
}

func (r *resumeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Resume{}, "id = ?", id).Error
}

func (r *resumeRepository) SetDefault(ctx context.Context, userID, resumeID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resume model.Resume
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", resumeID).
			First(&resume).Error; err != nil {
			return err
		}

		if resume.UserID != userID {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Model(&model.Resume{}).
			Where("user_id = ? AND is_default = ?", userID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}

		return tx.Model(&model.Resume{}).
			Where("id = ?", resumeID).
			Update("is_default", true).Error
	})
}
