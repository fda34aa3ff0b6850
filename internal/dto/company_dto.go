package dto

import "ajil.mn/jobmarket/internal/model"

type CreateCompanyInput struct {
	Name        string           `json:"name" binding:"required,max=150"`
	Description string           `json:"description"`
	Industry    string           `json:"industry"`
	Size        string           `json:"size"`
	Website     *string          `json:"website"`
	Location    string           `json:"location"`
	Features    model.StringList `json:"features"`
}

type UpdateCompanyInput struct {
	Name        *string           `json:"name" binding:"omitempty,max=150"`
	Description *string           `json:"description"`
	Industry    *string           `json:"industry"`
	Size        *string           `json:"size"`
	Website     *string           `json:"website"`
	Location    *string           `json:"location"`
	Features    *model.StringList `json:"features"`
}

type AddMemberInput struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=admin editor viewer member"`
}

type CreateReviewInput struct {
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
	Title       string `json:"title" binding:"max=150"`
	Body        string `json:"body" binding:"max=5000"`
	IsAnonymous bool   `json:"is_anonymous"`
}

type CreateEvaluationInput struct {
	CandidateID string `json:"candidate_id" binding:"required,uuid"`
	JobID       string `json:"job_id" binding:"required,uuid"`
	Score       int    `json:"score" binding:"required,min=1,max=5"`
	Comment     string `json:"comment" binding:"max=2000"`
}

type CompanyFilter struct {
	PageQuery
	Search   string `form:"search"`
	Industry string `form:"industry"`
}
