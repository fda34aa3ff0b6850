package service

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"ajil.mn/jobmarket/internal/repository"
	"ajil.mn/jobmarket/pkg/apperror"
	"ajil.mn/jobmarket/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResumeService interface {
	Create(ctx context.Context, userID uuid.UUID, input dto.CreateResumeInput) (*model.Resume, error)
	Get(ctx context.Context, userID, resumeID uuid.UUID) (*model.Resume, error)
	List(ctx context.Context, userID uuid.UUID) ([]*model.Resume, error)
	Update(ctx context.Context, userID, resumeID uuid.UUID, input dto.UpdateResumeInput) (*model.Resume, error)
	Delete(ctx context.Context, userID, resumeID uuid.UUID) error
	SetDefault(ctx context.Context, userID, resumeID uuid.UUID) error
	GetDefault(ctx context.Context, userID uuid.UUID) (*model.Resume, error)
	// UploadFile attaches the source document (pdf/doc) to the resume,
	// replacing any previous attachment.
	UploadFile(ctx context.Context, userID, resumeID uuid.UUID, r io.Reader, fileName string) (*model.Resume, error)
}

type resumeService struct {
	repo  repository.ResumeRepository
	files storage.FileStorage
}

func NewResumeService(repo repository.ResumeRepository, files storage.FileStorage) ResumeService {
	return &resumeService{repo: repo, files: files}
}

func (s *resumeService) Create(ctx context.Context, userID uuid.UUID, input dto.CreateResumeInput) (*model.Resume, error) {
	// New resumes are never created as default; the flag is only ever set
	// through SetDefault.
	resume := &model.Resume{
		UserID:         userID,
		Title:          input.Title,
		IsDefault:      false,
		BasicInfo:      input.BasicInfo,
		SkillsInfo:     input.SkillsInfo,
		Portfolio:      input.Portfolio,
		Education:      input.Education,
		WorkHistory:    input.WorkHistory,
		AdditionalInfo: input.AdditionalInfo,
	}

	if err := s.repo.Create(ctx, resume); err != nil {
		return nil, err
	}

	return resume, nil
}

func (s *resumeService) Get(ctx context.Context, userID, resumeID uuid.UUID) (*model.Resume, error) {
	resume, err := s.ownedResume(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}
	return resume, nil
}

// List returns the user's resumes, repairing the default flag on the way:
// a user with exactly one resume gets it promoted to default. The original
// client did this repair from the UI; doing it here makes it a server
// guarantee instead.
func (s *resumeService) List(ctx context.Context, userID uuid.UUID) ([]*model.Resume, error) {
	resumes, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(resumes) == 1 && !resumes[0].IsDefault {
		if err := s.repo.SetDefault(ctx, userID, resumes[0].ID); err == nil {
			resumes[0].IsDefault = true
		}
	}

	return resumes, nil
}

func (s *resumeService) Update(ctx context.Context, userID, resumeID uuid.UUID, input dto.UpdateResumeInput) (*model.Resume, error) {
	resume, err := s.ownedResume(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		resume.Title = *input.Title
	}
	if input.BasicInfo != nil {
		resume.BasicInfo = *input.BasicInfo
	}
	if input.SkillsInfo != nil {
		resume.SkillsInfo = *input.SkillsInfo
	}
	if input.Portfolio != nil {
		resume.Portfolio = *input.Portfolio
	}
	if input.Education != nil {
		resume.Education = *input.Education
	}
	if input.WorkHistory != nil {
		resume.WorkHistory = *input.WorkHistory
	}
	if input.AdditionalInfo != nil {
		resume.AdditionalInfo = *input.AdditionalInfo
	}

	if err := s.repo.Update(ctx, resume); err != nil {
		return nil, err
	}

	return resume, nil
}

func (s *resumeService) Delete(ctx context.Context, userID, resumeID uuid.UUID) error {
	if _, err := s.ownedResume(ctx, userID, resumeID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, resumeID)
}

func (s *resumeService) SetDefault(ctx context.Context, userID, resumeID uuid.UUID) error {
	err := s.repo.SetDefault(ctx, userID, resumeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}
	return err
}

func (s *resumeService) GetDefault(ctx context.Context, userID uuid.UUID) (*model.Resume, error) {
	resume, err := s.repo.FindDefault(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "no default resume", apperror.ErrNotFound)
		}
		return nil, err
	}
	return resume, nil
}

func (s *resumeService) UploadFile(ctx context.Context, userID, resumeID uuid.UUID, r io.Reader, fileName string) (*model.Resume, error) {
	if s.files == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "file storage is not configured", apperror.ErrInternal)
	}

	resume, err := s.ownedResume(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}

	url, err := s.files.Upload(ctx, r, storage.FolderResumes, fileName)
	if err != nil {
		return nil, err
	}

	old := resume.FileURL
	resume.FileURL = &url
	if err := s.repo.Update(ctx, resume); err != nil {
		return nil, err
	}

	if old != nil && *old != "" {
		if err := s.files.Delete(ctx, *old); err != nil {
			log.Printf("failed to delete previous resume file for user %s: %v", userID, err)
		}
	}

	return resume, nil
}

// ownedResume loads the resume and enforces ownership: a foreign resume is
// a 403, leaving the row untouched.
func (s *resumeService) ownedResume(ctx context.Context, userID, resumeID uuid.UUID) (*model.Resume, error) {
	resume, err := s.repo.FindByID(ctx, resumeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if resume.UserID != userID {
		return nil, apperror.New(http.StatusForbidden, "resume belongs to another user", apperror.ErrForbidden)
	}

	return resume, nil
}
