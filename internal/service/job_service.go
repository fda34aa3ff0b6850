package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"ajil.mn/jobmarket/internal/cache"
	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"ajil.mn/jobmarket/internal/repository"
	"ajil.mn/jobmarket/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	jobCacheTTL = 5 * time.Minute
	jobCacheTag = "jobs"
)

type JobService interface {
	Create(ctx context.Context, userID uuid.UUID, input dto.CreateJobInput) (*model.Job, error)
	Get(ctx context.Context, jobID uuid.UUID) (*model.Job, error)
	List(ctx context.Context, filter dto.JobFilter) (*dto.PaginatedJobsResponse, error)
	Search(ctx context.Context, filter dto.JobFilter) ([]*model.Job, error)
	Update(ctx context.Context, userID, jobID uuid.UUID, input dto.UpdateJobInput) (*model.Job, error)
	Delete(ctx context.Context, userID, jobID uuid.UUID) error

	Apply(ctx context.Context, candidateID, jobID uuid.UUID, input dto.ApplyInput) (*model.Application, error)
	ListApplicants(ctx context.Context, userID, jobID uuid.UUID, page dto.PageQuery) ([]*model.Application, int64, error)
	ListMyApplications(ctx context.Context, candidateID uuid.UUID, page dto.PageQuery) ([]*model.Application, int64, error)
	UpdateApplicationStatus(ctx context.Context, userID, applicationID uuid.UUID, status string) error

	ToggleSaved(ctx context.Context, userID, jobID uuid.UUID) (bool, error)
	ListSaved(ctx context.Context, userID uuid.UUID) ([]*model.SavedJob, error)
}

type jobService struct {
	repo        repository.JobRepository
	companyRepo repository.CompanyRepository
	resumeRepo  repository.ResumeRepository
	search      SearchService
	cache       *cache.Cache
}

func NewJobService(repo repository.JobRepository, companyRepo repository.CompanyRepository, resumeRepo repository.ResumeRepository, search SearchService, c *cache.Cache) JobService {
	return &jobService{
		repo:        repo,
		companyRepo: companyRepo,
		resumeRepo:  resumeRepo,
		search:      search,
		cache:       c,
	}
}

func (s *jobService) Create(ctx context.Context, userID uuid.UUID, input dto.CreateJobInput) (*model.Job, error) {
	if err := s.requireCompanyRole(ctx, userID, input.CompanyID, model.CompanyRoleAdmin, model.CompanyRoleEditor); err != nil {
		return nil, err
	}

	employmentType := input.EmploymentType
	if employmentType == "" {
		employmentType = model.EmploymentFullTime
	}

	job := &model.Job{
		CompanyID:      input.CompanyID,
		PostedByID:     userID,
		Title:          input.Title,
		Description:    input.Description,
		Requirements:   input.Requirements,
		Location:       input.Location,
		EmploymentType: employmentType,
		SalaryMin:      input.SalaryMin,
		SalaryMax:      input.SalaryMax,
		Status:         model.JobStatusOpen,
		Skills:         input.Skills,
		ExpiresAt:      input.ExpiresAt,
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}

	s.indexJob(job)
	s.invalidate(ctx)

	return job, nil
}

func (s *jobService) Get(ctx context.Context, jobID uuid.UUID) (*model.Job, error) {
	var cached model.Job
	cacheKey := "job:" + jobID.String()
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, job, jobCacheTTL, jobCacheTag); err != nil {
		log.Printf("failed to cache job %s: %v", jobID, err)
	}

	return job, nil
}

func (s *jobService) List(ctx context.Context, filter dto.JobFilter) (*dto.PaginatedJobsResponse, error) {
	filter.Defaults()

	jobs, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		data = append(data, *j)
	}

	return &dto.PaginatedJobsResponse{
		Data: data,
		Meta: dto.NewPaginationMeta(filter.Page, filter.Limit, total),
	}, nil
}

// Search goes through Meilisearch when configured and falls back to the
// SQL filter otherwise.
func (s *jobService) Search(ctx context.Context, filter dto.JobFilter) ([]*model.Job, error) {
	filter.Defaults()

	if s.search == nil {
		jobs, _, err := s.repo.FindAll(ctx, filter)
		return jobs, err
	}

	idStrings, err := s.search.SearchJobs(filter.Search, filter.Location, filter.EmploymentType, filter.Limit)
	if err != nil {
		log.Printf("meilisearch query failed, falling back to sql: %v", err)
		jobs, _, err := s.repo.FindAll(ctx, filter)
		return jobs, err
	}

	ids := make([]uuid.UUID, 0, len(idStrings))
	for _, raw := range idStrings {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}

	return s.repo.FindByIDs(ctx, ids)
}

func (s *jobService) Update(ctx context.Context, userID, jobID uuid.UUID, input dto.UpdateJobInput) (*model.Job, error) {
	job, err := s.editableJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		job.Title = *input.Title
	}
	if input.Description != nil {
		job.Description = *input.Description
	}
	if input.Requirements != nil {
		job.Requirements = *input.Requirements
	}
	if input.Location != nil {
		job.Location = *input.Location
	}
	if input.EmploymentType != nil {
		job.EmploymentType = *input.EmploymentType
	}
	if input.SalaryMin != nil {
		job.SalaryMin = input.SalaryMin
	}
	if input.SalaryMax != nil {
		job.SalaryMax = input.SalaryMax
	}
	if input.Status != nil {
		job.Status = *input.Status
	}
	if input.Skills != nil {
		job.Skills = *input.Skills
	}
	if input.ExpiresAt != nil {
		job.ExpiresAt = input.ExpiresAt
	}

	if err := s.repo.Update(ctx, job); err != nil {
		return nil, err
	}

	s.indexJob(job)
	s.invalidate(ctx)

	return job, nil
}

func (s *jobService) Delete(ctx context.Context, userID, jobID uuid.UUID) error {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if err := s.requireCompanyRole(ctx, userID, job.CompanyID, model.CompanyRoleAdmin); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, jobID); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteJob(jobID.String()); err != nil {
			log.Printf("failed to remove job %s from search index: %v", jobID, err)
		}
	}
	s.invalidate(ctx)

	return nil
}

func (s *jobService) Apply(ctx context.Context, candidateID, jobID uuid.UUID, input dto.ApplyInput) (*model.Application, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if job.Status != model.JobStatusOpen {
		return nil, apperror.New(http.StatusConflict, "job is not open for applications", apperror.ErrConflict)
	}

	if _, err := s.repo.FindApplication(ctx, jobID, candidateID); err == nil {
		return nil, apperror.New(http.StatusConflict, "already applied to this job", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	resumeID := input.ResumeID
	if resumeID == nil {
		// Quick-apply uses the default resume when none is chosen.
		if defaultResume, err := s.resumeRepo.FindDefault(ctx, candidateID); err == nil {
			resumeID = &defaultResume.ID
		}
	} else {
		resume, err := s.resumeRepo.FindByID(ctx, *resumeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.New(http.StatusNotFound, "resume not found", apperror.ErrNotFound)
			}
			return nil, err
		}
		if resume.UserID != candidateID {
			return nil, apperror.New(http.StatusForbidden, "resume belongs to another user", apperror.ErrForbidden)
		}
	}

	application := &model.Application{
		JobID:       jobID,
		CandidateID: candidateID,
		ResumeID:    resumeID,
		CoverLetter: input.CoverLetter,
		Status:      model.ApplicationPending,
	}

	if err := s.repo.CreateApplication(ctx, application); err != nil {
		return nil, err
	}

	return application, nil
}

func (s *jobService) ListApplicants(ctx context.Context, userID, jobID uuid.UUID, page dto.PageQuery) ([]*model.Application, int64, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperror.ErrNotFound
		}
		return nil, 0, err
	}

	if err := s.requireCompanyRole(ctx, userID, job.CompanyID, model.CompanyRoleAdmin, model.CompanyRoleEditor, model.CompanyRoleViewer); err != nil {
		return nil, 0, err
	}

	page.Defaults()
	return s.repo.FindApplicationsByJob(ctx, jobID, page.Offset(), page.Limit)
}

func (s *jobService) ListMyApplications(ctx context.Context, candidateID uuid.UUID, page dto.PageQuery) ([]*model.Application, int64, error) {
	page.Defaults()
	return s.repo.FindApplicationsByCandidate(ctx, candidateID, page.Offset(), page.Limit)
}

func (s *jobService) UpdateApplicationStatus(ctx context.Context, userID, applicationID uuid.UUID, status string) error {
	application, err := s.repo.FindApplicationByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if application.Job == nil {
		return apperror.ErrNotFound
	}

	if err := s.requireCompanyRole(ctx, userID, application.Job.CompanyID, model.CompanyRoleAdmin, model.CompanyRoleEditor); err != nil {
		return err
	}

	return s.repo.UpdateApplicationStatus(ctx, applicationID, status)
}

func (s *jobService) ToggleSaved(ctx context.Context, userID, jobID uuid.UUID) (bool, error) {
	if _, err := s.repo.FindByID(ctx, jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperror.ErrNotFound
		}
		return false, err
	}

	return s.repo.SaveJob(ctx, userID, jobID)
}

func (s *jobService) ListSaved(ctx context.Context, userID uuid.UUID) ([]*model.SavedJob, error) {
	return s.repo.FindSavedJobs(ctx, userID)
}

func (s *jobService) editableJob(ctx context.Context, userID, jobID uuid.UUID) (*model.Job, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if err := s.requireCompanyRole(ctx, userID, job.CompanyID, model.CompanyRoleAdmin, model.CompanyRoleEditor); err != nil {
		return nil, err
	}

	return job, nil
}

func (s *jobService) requireCompanyRole(ctx context.Context, userID, companyID uuid.UUID, roles ...string) error {
	membership, err := s.companyRepo.FindMembership(ctx, companyID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(http.StatusForbidden, "not a member of this company", apperror.ErrForbidden)
		}
		return err
	}

	for _, role := range roles {
		if membership.Role == role {
			return nil
		}
	}

	return apperror.New(http.StatusForbidden, "insufficient company role", apperror.ErrForbidden)
}

func (s *jobService) indexJob(job *model.Job) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexJob(job); err != nil {
		log.Printf("failed to index job %s: %v", job.ID, err)
	}
}

func (s *jobService) invalidate(ctx context.Context) {
	if err := s.cache.ClearByTag(ctx, jobCacheTag); err != nil {
		log.Printf("failed to clear job cache: %v", err)
	}
}
