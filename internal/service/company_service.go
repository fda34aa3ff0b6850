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
	companyCacheTTL = 10 * time.Minute
	companyCacheTag = "companies"
)

type CompanyService interface {
	Create(ctx context.Context, userID uuid.UUID, input dto.CreateCompanyInput) (*model.Company, error)
	Get(ctx context.Context, companyID uuid.UUID) (*model.Company, error)
	List(ctx context.Context, filter dto.CompanyFilter) ([]*model.Company, int64, error)
	Update(ctx context.Context, userID, companyID uuid.UUID, input dto.UpdateCompanyInput) (*model.Company, error)
	SetLogo(ctx context.Context, userID, companyID uuid.UUID, url string) (*model.Company, error)
	Delete(ctx context.Context, userID, companyID uuid.UUID) error

	Members(ctx context.Context, userID, companyID uuid.UUID) ([]*model.CompanyUser, error)
	AddMember(ctx context.Context, userID, companyID uuid.UUID, input dto.AddMemberInput) (*model.CompanyUser, error)
	RemoveMember(ctx context.Context, userID, companyID, memberID uuid.UUID) error

	CreateReview(ctx context.Context, userID, companyID uuid.UUID, input dto.CreateReviewInput) (*model.CompanyReview, error)
	ListReviews(ctx context.Context, companyID uuid.UUID, page dto.PageQuery) ([]*model.CompanyReview, int64, error)
}

type companyService struct {
	repo     repository.CompanyRepository
	userRepo repository.UserRepository
	cache    *cache.Cache
}

func NewCompanyService(repo repository.CompanyRepository, userRepo repository.UserRepository, c *cache.Cache) CompanyService {
	return &companyService{
		repo:     repo,
		userRepo: userRepo,
		cache:    c,
	}
}

func (s *companyService) Create(ctx context.Context, userID uuid.UUID, input dto.CreateCompanyInput) (*model.Company, error) {
	company := &model.Company{
		Name:        input.Name,
		Description: input.Description,
		Industry:    input.Industry,
		Size:        input.Size,
		Website:     input.Website,
		Location:    input.Location,
		Features:    input.Features,
	}

	// Creator becomes company admin. IsPrimary stays false here; the flag is
	// only granted by the registration transaction.
	membership := &model.CompanyUser{
		UserID: userID,
		Role:   model.CompanyRoleAdmin,
	}

	if err := s.repo.Create(ctx, company, membership); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return company, nil
}

func (s *companyService) Get(ctx context.Context, companyID uuid.UUID) (*model.Company, error) {
	var cached model.Company
	cacheKey := "company:" + companyID.String()
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	company, err := s.repo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, company, companyCacheTTL, companyCacheTag); err != nil {
		log.Printf("failed to cache company %s: %v", companyID, err)
	}

	return company, nil
}

func (s *companyService) List(ctx context.Context, filter dto.CompanyFilter) ([]*model.Company, int64, error) {
	filter.Defaults()
	return s.repo.FindAll(ctx, filter)
}

func (s *companyService) Update(ctx context.Context, userID, companyID uuid.UUID, input dto.UpdateCompanyInput) (*model.Company, error) {
	if err := s.requireRole(ctx, userID, companyID, model.CompanyRoleAdmin, model.CompanyRoleEditor); err != nil {
		return nil, err
	}

	company, err := s.repo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		company.Name = *input.Name
	}
	if input.Description != nil {
		company.Description = *input.Description
	}
	if input.Industry != nil {
		company.Industry = *input.Industry
	}
	if input.Size != nil {
		company.Size = *input.Size
	}
	if input.Website != nil {
		company.Website = input.Website
	}
	if input.Location != nil {
		company.Location = *input.Location
	}
	if input.Features != nil {
		company.Features = *input.Features
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return company, nil
}

func (s *companyService) SetLogo(ctx context.Context, userID, companyID uuid.UUID, url string) (*model.Company, error) {
	if err := s.requireRole(ctx, userID, companyID, model.CompanyRoleAdmin, model.CompanyRoleEditor); err != nil {
		return nil, err
	}

	company, err := s.repo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	company.LogoURL = &url
	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return company, nil
}

func (s *companyService) Delete(ctx context.Context, userID, companyID uuid.UUID) error {
	if err := s.requireRole(ctx, userID, companyID, model.CompanyRoleAdmin); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, companyID); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *companyService) Members(ctx context.Context, userID, companyID uuid.UUID) ([]*model.CompanyUser, error) {
	if err := s.requireRole(ctx, userID, companyID, model.CompanyRoleAdmin, model.CompanyRoleEditor, model.CompanyRoleViewer, model.CompanyRoleMember); err != nil {
		return nil, err
	}
	return s.repo.FindMembers(ctx, companyID)
}

func (s *companyService) AddMember(ctx context.Context, userID, companyID uuid.UUID, input dto.AddMemberInput) (*model.CompanyUser, error) {
	if err := s.requireRole(ctx, userID, companyID, model.CompanyRoleAdmin); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "no account with that email", apperror.ErrNotFound)
		}
		return nil, err
	}

	if _, err := s.repo.FindMembership(ctx, companyID, user.ID); err == nil {
		return nil, apperror.New(http.StatusConflict, "user is already a member", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	membership := &model.CompanyUser{
		UserID:    user.ID,
		CompanyID: companyID,
		Role:      input.Role,
	}

	if err := s.repo.AddMember(ctx, membership); err != nil {
		return nil, err
	}

	return membership, nil
}

func (s *companyService) RemoveMember(ctx context.Context, userID, companyID, memberID uuid.UUID) error {
	if err := s.requireRole(ctx, userID, companyID, model.CompanyRoleAdmin); err != nil {
		return err
	}

	if userID == memberID {
		return apperror.New(http.StatusBadRequest, "cannot remove yourself", apperror.ErrBadRequest)
	}

	return s.repo.RemoveMember(ctx, companyID, memberID)
}

func (s *companyService) CreateReview(ctx context.Context, userID, companyID uuid.UUID, input dto.CreateReviewInput) (*model.CompanyReview, error) {
	if _, err := s.repo.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	exists, err := s.repo.HasReview(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.New(http.StatusConflict, "you already reviewed this company", apperror.ErrConflict)
	}

	review := &model.CompanyReview{
		CompanyID:   companyID,
		UserID:      userID,
		Rating:      input.Rating,
		Title:       input.Title,
		Body:        input.Body,
		IsAnonymous: input.IsAnonymous,
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *companyService) ListReviews(ctx context.Context, companyID uuid.UUID, page dto.PageQuery) ([]*model.CompanyReview, int64, error) {
	page.Defaults()
	return s.repo.FindReviews(ctx, companyID, page.Offset(), page.Limit)
}

func (s *companyService) requireRole(ctx context.Context, userID, companyID uuid.UUID, roles ...string) error {
	membership, err := s.repo.FindMembership(ctx, companyID, userID)
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

func (s *companyService) invalidate(ctx context.Context) {
	if err := s.cache.ClearByTag(ctx, companyCacheTag); err != nil {
		log.Printf("failed to clear company cache: %v", err)
	}
}
