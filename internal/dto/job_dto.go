package dto

import (
	"time"

	"ajil.mn/jobmarket/internal/model"
	"github.com/google/uuid"
)

type CreateJobInput struct {
	CompanyID      uuid.UUID        `json:"company_id" binding:"required"`
	Title          string           `json:"title" binding:"required,max=200"`
	Description    string           `json:"description" binding:"required"`
	Requirements   string           `json:"requirements"`
	Location       string           `json:"location"`
	EmploymentType string           `json:"employment_type" binding:"omitempty,oneof=full_time part_time contract internship"`
	SalaryMin      *int             `json:"salary_min"`
	SalaryMax      *int             `json:"salary_max"`
	Skills         model.StringList `json:"skills"`
	ExpiresAt      *time.Time       `json:"expires_at"`
}

type UpdateJobInput struct {
	Title          *string           `json:"title" binding:"omitempty,max=200"`
	Description    *string           `json:"description"`
	Requirements   *string           `json:"requirements"`
	Location       *string           `json:"location"`
	EmploymentType *string           `json:"employment_type" binding:"omitempty,oneof=full_time part_time contract internship"`
	SalaryMin      *int              `json:"salary_min"`
	SalaryMax      *int              `json:"salary_max"`
	Status         *string           `json:"status" binding:"omitempty,oneof=open closed draft"`
	Skills         *model.StringList `json:"skills"`
	ExpiresAt      *time.Time        `json:"expires_at"`
}

type JobFilter struct {
	PageQuery
	CompanyID      string `form:"company_id"`
	Search         string `form:"search"`
	Location       string `form:"location"`
	EmploymentType string `form:"employment_type"`
	Status         string `form:"status"`
}

type ApplyInput struct {
	ResumeID    *uuid.UUID `json:"resume_id"`
	CoverLetter string     `json:"cover_letter" binding:"max=5000"`
}

type UpdateApplicationInput struct {
	Status string `json:"status" binding:"required,oneof=pending reviewed interview rejected accepted"`
}

type PaginatedJobsResponse struct {
	Data []model.Job    `json:"data"`
	Meta PaginationMeta `json:"meta"`
}
