package repository

import (
	"context"
	"time"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	FindAll(ctx context.Context, filter dto.JobFilter) ([]*model.Job, int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
	CloseExpired(ctx context.Context) (int64, error)

	CreateApplication(ctx context.Context, application *model.Application) error
	FindApplication(ctx context.Context, jobID, candidateID uuid.UUID) (*model.Application, error)
	FindApplicationByID(ctx context.Context, id uuid.UUID) (*model.Application, error)
	FindApplicationsByJob(ctx context.Context, jobID uuid.UUID, offset, limit int) ([]*model.Application, int64, error)
	FindApplicationsByCandidate(ctx context.Context, candidateID uuid.UUID, offset, limit int) ([]*model.Application, int64, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status string) error

	SaveJob(ctx context.Context, userID, jobID uuid.UUID) (bool, error)
	FindSavedJobs(ctx context.Context, userID uuid.UUID) ([]*model.SavedJob, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).
		Preload("Company").
		Where("id = ?", id).
		First(&job).Error; err != nil {
		return nil, err
	}

	return &job, nil
}

func (r *jobRepository) FindAll(ctx context.Context, filter dto.JobFilter) ([]*model.Job, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Job{})

	if filter.CompanyID != "" {
		query = query.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	} else {
		query = query.Where("status = ?", model.JobStatusOpen)
	}
	if filter.Location != "" {
		query = query.Where("location ILIKE ?", "%"+filter.Location+"%")
	}
	if filter.EmploymentType != "" {
		query = query.Where("employment_type = ?", filter.EmploymentType)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []*model.Job
	if err := query.
		Preload("Company").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// FindByIDs loads jobs preserving the order of ids, used to keep search
// relevance ordering.
func (r *jobRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Job, error) {
	if len(ids) == 0 {
		return []*model.Job{}, nil
	}

	var jobs []*model.Job
	if err := r.db.WithContext(ctx).
		Preload("Company").
		Where("id IN ?", ids).
		Find(&jobs).Error; err != nil {
		return nil, err
	}

	jobMap := make(map[uuid.UUID]*model.Job, len(jobs))
	for _, j := range jobs {
		jobMap[j.ID] = j
	}

	ordered := make([]*model.Job, 0, len(ids))
	for _, id := range ids {
		if j, ok := jobMap[id]; ok {
			ordered = append(ordered, j)
		}
	}

	return ordered, nil
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *jobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Job{}, "id = ?", id).Error
}

// CloseExpired flips open jobs whose expiry has passed to closed.
// Run periodically from the server background loop.
func (r *jobRepository) CloseExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", model.JobStatusOpen, time.Now()).
		Update("status", model.JobStatusClosed)
	return result.RowsAffected, result.Error
}

func (r *jobRepository) CreateApplication(ctx context.Context, application *model.Application) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *jobRepository) FindApplication(ctx context.Context, jobID, candidateID uuid.UUID) (*model.Application, error) {
	var application model.Application
	if err := r.db.WithContext(ctx).
		Where("job_id = ? AND candidate_id = ?", jobID, candidateID).
		First(&application).Error; err != nil {
		return nil, err
	}

	return &application, nil
}

func (r *jobRepository) FindApplicationByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var application model.Application
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Where("id = ?", id).
		First(&application).Error; err != nil {
		return nil, err
	}

	return &application, nil
}

func (r *jobRepository) FindApplicationsByJob(ctx context.Context, jobID uuid.UUID, offset, limit int) ([]*model.Application, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("job_id = ?", jobID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var applications []*model.Application
	if err := query.
		Preload("Candidate", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "email", "first_name", "last_name", "avatar_url", "skills")
		}).
		Preload("Resume").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&applications).Error; err != nil {
		return nil, 0, err
	}

	return applications, total, nil
}

func (r *jobRepository) FindApplicationsByCandidate(ctx context.Context, candidateID uuid.UUID, offset, limit int) ([]*model.Application, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("candidate_id = ?", candidateID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var applications []*model.Application
	if err := query.
		Preload("Job").
		Preload("Job.Company").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&applications).Error; err != nil {
		return nil, 0, err
	}

	return applications, total, nil
}

func (r *jobRepository) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// SaveJob toggles the saved flag. Returns true when the job is now saved,
// false when the toggle removed an existing save.
func (r *jobRepository) SaveJob(ctx context.Context, userID, jobID uuid.UUID) (bool, error) {
	var existing model.SavedJob
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		First(&existing).Error

	if err == nil {
		if err := r.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return false, err
		}
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}

	saved := &model.SavedJob{UserID: userID, JobID: jobID}
	if err := r.db.WithContext(ctx).Create(saved).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *jobRepository) FindSavedJobs(ctx context.Context, userID uuid.UUID) ([]*model.SavedJob, error) {
	var saved []*model.SavedJob
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Job.Company").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error; err != nil {
		return nil, err
	}

	return saved, nil
}
