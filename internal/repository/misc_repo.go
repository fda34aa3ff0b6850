package repository

import (
	"context"
	"time"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *model.Evaluation) error
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*model.Evaluation, error)
	FindByEvaluator(ctx context.Context, evaluatorID uuid.UUID) ([]*model.Evaluation, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *model.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *evaluationRepository) FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*model.Evaluation, error) {
	var evaluations []*model.Evaluation
	if err := r.db.WithContext(ctx).
		Preload("Job", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title")
		}).
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		Find(&evaluations).Error; err != nil {
		return nil, err
	}

	return evaluations, nil
}

func (r *evaluationRepository) FindByEvaluator(ctx context.Context, evaluatorID uuid.UUID) ([]*model.Evaluation, error) {
	var evaluations []*model.Evaluation
	if err := r.db.WithContext(ctx).
		Where("evaluator_id = ?", evaluatorID).
		Order("created_at DESC").
		Find(&evaluations).Error; err != nil {
		return nil, err
	}

	return evaluations, nil
}

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *model.Subscription) error
	FindActive(ctx context.Context, userID uuid.UUID) (*model.Subscription, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*model.Subscription, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	ExpireOverdue(ctx context.Context) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, subscription *model.Subscription) error {
	return r.db.WithContext(ctx).Create(subscription).Error
}

func (r *subscriptionRepository) FindActive(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	var subscription model.Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.SubscriptionActive).
		Order("created_at DESC").
		First(&subscription).Error; err != nil {
		return nil, err
	}

	return &subscription, nil
}

func (r *subscriptionRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*model.Subscription, error) {
	var subscriptions []*model.Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subscriptions).Error; err != nil {
		return nil, err
	}

	return subscriptions, nil
}

func (r *subscriptionRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", id).
		Update("status", model.SubscriptionCancelled).Error
}

func (r *subscriptionRepository) ExpireOverdue(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", model.SubscriptionActive, time.Now()).
		Update("status", model.SubscriptionExpired)
	return result.RowsAffected, result.Error
}

type AdminRepository interface {
	CreateLog(ctx context.Context, entry *model.AdminLog) error
	FindLogs(ctx context.Context, offset, limit int) ([]*model.AdminLog, int64, error)
	DashboardStats(ctx context.Context) (*dto.DashboardStats, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) CreateLog(ctx context.Context, entry *model.AdminLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *adminRepository) FindLogs(ctx context.Context, offset, limit int) ([]*model.AdminLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.AdminLog{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []*model.AdminLog
	if err := query.
		Preload("Admin", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "email")
		}).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func (r *adminRepository) DashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	stats := &dto.DashboardStats{}
	db := r.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		model any
		where []any
	}{
		{&stats.TotalUsers, &model.User{}, nil},
		{&stats.TotalCandidates, &model.User{}, []any{"user_type = ?", model.UserTypeCandidate}},
		{&stats.TotalEmployers, &model.User{}, []any{"user_type = ?", model.UserTypeEmployer}},
		{&stats.TotalCompanies, &model.Company{}, nil},
		{&stats.TotalJobs, &model.Job{}, nil},
		{&stats.OpenJobs, &model.Job{}, []any{"status = ?", model.JobStatusOpen}},
		{&stats.TotalApplications, &model.Application{}, nil},
		{&stats.TotalResumes, &model.Resume{}, nil},
		{&stats.ActiveChatRooms, &model.ChatRoom{}, []any{"status = ?", model.RoomStatusActive}},
	}

	for _, c := range counts {
		query := db.Model(c.model)
		if c.where != nil {
			query = query.Where(c.where[0], c.where[1:]...)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	return stats, nil
}
