package repository

import (
	"context"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company, membership *model.CompanyUser) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	FindAll(ctx context.Context, filter dto.CompanyFilter) ([]*model.Company, int64, error)
	Update(ctx context.Context, company *model.Company) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error

	FindMembership(ctx context.Context, companyID, userID uuid.UUID) (*model.CompanyUser, error)
	FindMembers(ctx context.Context, companyID uuid.UUID) ([]*model.CompanyUser, error)
	AddMember(ctx context.Context, membership *model.CompanyUser) error
	RemoveMember(ctx context.Context, companyID, userID uuid.UUID) error

	CreateReview(ctx context.Context, review *model.CompanyReview) error
	FindReviews(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]*model.CompanyReview, int64, error)
	HasReview(ctx context.Context, companyID, userID uuid.UUID) (bool, error)
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company, membership *model.CompanyUser) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return err
		}

		if membership != nil {
			membership.CompanyID = company.ID
			if err := tx.Create(membership).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&company).Error; err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *companyRepository) FindAll(ctx context.Context, filter dto.CompanyFilter) ([]*model.Company, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Company{})

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Industry != "" {
		query = query.Where("industry = ?", filter.Industry)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []*model.Company
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&companies).Error; err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

func (r *companyRepository) Update(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

func (r *companyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Company{}, "id = ?", id).Error
}

func (r *companyRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Company{}).
		Where("id = ?", id).
		Update("is_verified", verified).Error
}

func (r *companyRepository) FindMembership(ctx context.Context, companyID, userID uuid.UUID) (*model.CompanyUser, error) {
	var membership model.CompanyUser
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		First(&membership).Error; err != nil {
		return nil, err
	}

	return &membership, nil
}

func (r *companyRepository) FindMembers(ctx context.Context, companyID uuid.UUID) ([]*model.CompanyUser, error) {
	var members []*model.CompanyUser
	if err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "email", "first_name", "last_name", "avatar_url")
		}).
		Where("company_id = ?", companyID).
		Find(&members).Error; err != nil {
		return nil, err
	}

	return members, nil
}

func (r *companyRepository) AddMember(ctx context.Context, membership *model.CompanyUser) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *companyRepository) RemoveMember(ctx context.Context, companyID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Delete(&model.CompanyUser{}).Error
}

func (r *companyRepository) CreateReview(ctx context.Context, review *model.CompanyReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *companyRepository) FindReviews(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]*model.CompanyReview, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.CompanyReview{}).
		Where("company_id = ?", companyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []*model.CompanyReview
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *companyRepository) HasReview(ctx context.Context, companyID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.CompanyReview{}).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
