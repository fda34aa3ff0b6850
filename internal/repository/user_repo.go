package repository

import (
	"context"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	// Create inserts the user and, for employer registrations, the company
	// and its admin membership in the same transaction.
	Create(ctx context.Context, user *model.User, company *model.Company, membership *model.CompanyUser) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByRegistryNumber(ctx context.Context, registryNumber string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	FindAll(ctx context.Context, filter dto.UserFilter) ([]*model.User, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	PrimaryMembership(ctx context.Context, userID uuid.UUID) (*model.CompanyUser, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User, company *model.Company, membership *model.CompanyUser) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		if company != nil {
			if err := tx.Create(company).Error; err != nil {
				return err
			}
		}

		if membership != nil {
			membership.UserID = user.ID
			if company != nil {
				membership.CompanyID = company.ID
			}
			if err := tx.Create(membership).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Companies").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Companies").
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByRegistryNumber(ctx context.Context, registryNumber string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("registry_number = ?", registryNumber).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) FindAll(ctx context.Context, filter dto.UserFilter) ([]*model.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.User{})

	if filter.UserType != "" {
		query = query.Where("user_type = ?", filter.UserType)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*model.User
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id).Error
}

func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *userRepository) PrimaryMembership(ctx context.Context, userID uuid.UUID) (*model.CompanyUser, error) {
	var membership model.CompanyUser
	if err := r.db.WithContext(ctx).
		Preload("Company").
		Where("user_id = ? AND is_primary = ?", userID, true).
		First(&membership).Error; err != nil {
		return nil, err
	}

	return &membership, nil
}
