package dto

import "ajil.mn/jobmarket/internal/model"

type RegisterInput struct {
	Username       string  `json:"username" binding:"required,min=3,max=50"`
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=8"`
	UserType       string  `json:"user_type" binding:"required,oneof=candidate employer"`
	FirstName      string  `json:"first_name" binding:"required"`
	LastName       string  `json:"last_name" binding:"required"`
	Phone          *string `json:"phone"`
	Nationality    string  `json:"nationality" binding:"omitempty,oneof=mongolian foreign"`
	RegistryNumber *string `json:"registry_number"`
	PassportNumber *string `json:"passport_number"`
	// CompanyName is required for employer registrations; a Company and an
	// admin CompanyUser row are created alongside the account.
	CompanyName *string `json:"company_name"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	User         *model.User    `json:"user"`
	Company      *model.Company `json:"company,omitempty"`
}

type UpdateProfileInput struct {
	FirstName   *string           `json:"first_name"`
	LastName    *string           `json:"last_name"`
	Phone       *string           `json:"phone"`
	Skills      *model.StringList `json:"skills"`
	Preferences *model.JSONMap    `json:"preferences"`
}
