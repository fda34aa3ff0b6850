package service

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"ajil.mn/jobmarket/internal/repository"
	"ajil.mn/jobmarket/pkg/apperror"
	"ajil.mn/jobmarket/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.User, error)
	Update(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput) (*model.User, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, r io.Reader, fileName string) (string, error)

	CreateEvaluation(ctx context.Context, evaluatorID uuid.UUID, input dto.CreateEvaluationInput) (*model.Evaluation, error)
	ListEvaluations(ctx context.Context, requesterID, candidateID uuid.UUID, requesterType string) ([]*model.Evaluation, error)

	Subscribe(ctx context.Context, userID uuid.UUID, plan string, duration time.Duration) (*model.Subscription, error)
	MySubscriptions(ctx context.Context, userID uuid.UUID) ([]*model.Subscription, error)
	CancelSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) error
}

type profileService struct {
	userRepo repository.UserRepository
	evalRepo repository.EvaluationRepository
	subRepo  repository.SubscriptionRepository
	files    storage.FileStorage
}

func NewProfileService(
	userRepo repository.UserRepository,
	evalRepo repository.EvaluationRepository,
	subRepo repository.SubscriptionRepository,
	files storage.FileStorage,
) ProfileService {
	return &profileService{
		userRepo: userRepo,
		evalRepo: evalRepo,
		subRepo:  subRepo,
		files:    files,
	}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput) (*model.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Skills != nil {
		user.Skills = *input.Skills
	}
	if input.Preferences != nil {
		user.Preferences = *input.Preferences
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *profileService) UploadAvatar(ctx context.Context, userID uuid.UUID, r io.Reader, fileName string) (string, error) {
	if s.files == nil {
		return "", apperror.New(http.StatusServiceUnavailable, "file storage is not configured", apperror.ErrInternal)
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.files.Upload(ctx, r, storage.FolderAvatars, fileName)
	if err != nil {
		return "", err
	}

	old := user.AvatarURL
	user.AvatarURL = &url
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	if old != nil && *old != "" {
		if err := s.files.Delete(ctx, *old); err != nil {
			log.Printf("failed to delete previous avatar for user %s: %v", userID, err)
		}
	}

	return url, nil
}

func (s *profileService) CreateEvaluation(ctx context.Context, evaluatorID uuid.UUID, input dto.CreateEvaluationInput) (*model.Evaluation, error) {
	evaluator, err := s.Get(ctx, evaluatorID)
	if err != nil {
		return nil, err
	}
	if NormalizeUserType(evaluator) != model.UserTypeEmployer {
		return nil, apperror.New(http.StatusForbidden, "only employers can evaluate candidates", apperror.ErrForbidden)
	}

	candidateID, err := uuid.Parse(input.CandidateID)
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "invalid candidate id", apperror.ErrBadRequest)
	}
	jobID, err := uuid.Parse(input.JobID)
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "invalid job id", apperror.ErrBadRequest)
	}

	candidate, err := s.userRepo.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "candidate not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	if NormalizeUserType(candidate) != model.UserTypeCandidate {
		return nil, apperror.New(http.StatusBadRequest, "target user is not a candidate", apperror.ErrBadRequest)
	}

	evaluation := &model.Evaluation{
		EvaluatorID: evaluatorID,
		CandidateID: candidateID,
		JobID:       jobID,
		Score:       input.Score,
		Comment:     input.Comment,
	}

	if err := s.evalRepo.Create(ctx, evaluation); err != nil {
		return nil, err
	}

	return evaluation, nil
}

func (s *profileService) ListEvaluations(ctx context.Context, requesterID, candidateID uuid.UUID, requesterType string) ([]*model.Evaluation, error) {
	// Candidates may only read their own evaluations. Employers and admins
	// can read any candidate's.
	if requesterType == model.UserTypeCandidate && requesterID != candidateID {
		return nil, apperror.ErrForbidden
	}
	return s.evalRepo.FindByCandidate(ctx, candidateID)
}

func (s *profileService) Subscribe(ctx context.Context, userID uuid.UUID, plan string, duration time.Duration) (*model.Subscription, error) {
	if _, err := s.subRepo.FindActive(ctx, userID); err == nil {
		return nil, apperror.New(http.StatusConflict, "an active subscription already exists", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	sub := &model.Subscription{
		UserID:   userID,
		Plan:     plan,
		Status:   model.SubscriptionActive,
		StartsAt: now,
	}
	if duration > 0 {
		expires := now.Add(duration)
		sub.ExpiresAt = &expires
	}

	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

func (s *profileService) MySubscriptions(ctx context.Context, userID uuid.UUID) ([]*model.Subscription, error) {
	return s.subRepo.FindByUser(ctx, userID)
}

func (s *profileService) CancelSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) error {
	subs, err := s.subRepo.FindByUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, sub := range subs {
		if sub.ID == subscriptionID {
			if sub.Status != model.SubscriptionActive {
				return apperror.New(http.StatusConflict, "subscription is not active", apperror.ErrConflict)
			}
			return s.subRepo.Cancel(ctx, sub.ID)
		}
	}

	return apperror.ErrNotFound
}
