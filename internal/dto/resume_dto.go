package dto

import "ajil.mn/jobmarket/internal/model"

type CreateResumeInput struct {
	Title          string        `json:"title" binding:"required,max=150"`
	BasicInfo      model.JSONMap `json:"basic_info"`
	SkillsInfo     model.JSONMap `json:"skills_info"`
	Portfolio      model.JSONMap `json:"portfolio"`
	Education      model.JSONMap `json:"education"`
	WorkHistory    model.JSONMap `json:"work_history"`
	AdditionalInfo model.JSONMap `json:"additional_info"`
}

// UpdateResumeInput is a partial merge: nil fields are left untouched.
type UpdateResumeInput struct {
	Title          *string        `json:"title" binding:"omitempty,max=150"`
	BasicInfo      *model.JSONMap `json:"basic_info"`
	SkillsInfo     *model.JSONMap `json:"skills_info"`
	Portfolio      *model.JSONMap `json:"portfolio"`
	Education      *model.JSONMap `json:"education"`
	WorkHistory    *model.JSONMap `json:"work_history"`
	AdditionalInfo *model.JSONMap `json:"additional_info"`
}
