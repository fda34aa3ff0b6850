package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"ajil.mn/jobmarket/internal/repository"
	"ajil.mn/jobmarket/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminService interface {
	ListUsers(ctx context.Context, filter dto.UserFilter) ([]*model.User, int64, error)
	SetUserActive(ctx context.Context, adminID, userID uuid.UUID, active bool) error
	DeleteUser(ctx context.Context, adminID, userID uuid.UUID) error
	VerifyCompany(ctx context.Context, adminID, companyID uuid.UUID, verified bool) error
	Dashboard(ctx context.Context) (*dto.DashboardStats, error)
	ListLogs(ctx context.Context, page dto.PageQuery) ([]*model.AdminLog, int64, error)
	Performance(window time.Duration) MonitorSummary
}

type adminService struct {
	repo        repository.AdminRepository
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	monitor     *PerformanceMonitor
}

func NewAdminService(
	repo repository.AdminRepository,
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	monitor *PerformanceMonitor,
) AdminService {
	return &adminService{
		repo:        repo,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		monitor:     monitor,
	}
}

func (s *adminService) ListUsers(ctx context.Context, filter dto.UserFilter) ([]*model.User, int64, error) {
	filter.Defaults()
	return s.userRepo.FindAll(ctx, filter)
}

func (s *adminService) SetUserActive(ctx context.Context, adminID, userID uuid.UUID, active bool) error {
	if adminID == userID {
		return apperror.New(http.StatusBadRequest, "cannot change your own account status", apperror.ErrBadRequest)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if err := s.userRepo.SetActive(ctx, user.ID, active); err != nil {
		return err
	}

	action := "deactivate_user"
	if active {
		action = "activate_user"
	}
	s.audit(ctx, adminID, action, "user", user.ID, user.Email)

	return nil
}

func (s *adminService) DeleteUser(ctx context.Context, adminID, userID uuid.UUID) error {
	if adminID == userID {
		return apperror.New(http.StatusBadRequest, "cannot delete your own account", apperror.ErrBadRequest)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.audit(ctx, adminID, "delete_user", "user", user.ID, user.Email)
	return nil
}

func (s *adminService) VerifyCompany(ctx context.Context, adminID, companyID uuid.UUID, verified bool) error {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if err := s.companyRepo.SetVerified(ctx, company.ID, verified); err != nil {
		return err
	}

	action := "unverify_company"
	if verified {
		action = "verify_company"
	}
	s.audit(ctx, adminID, action, "company", company.ID, company.Name)

	return nil
}

func (s *adminService) Dashboard(ctx context.Context) (*dto.DashboardStats, error) {
	return s.repo.DashboardStats(ctx)
}

func (s *adminService) ListLogs(ctx context.Context, page dto.PageQuery) ([]*model.AdminLog, int64, error) {
	page.Defaults()
	return s.repo.FindLogs(ctx, page.Offset(), page.Limit)
}

func (s *adminService) Performance(window time.Duration) MonitorSummary {
	return s.monitor.Summary(window)
}

// audit writes an admin log entry. Failures are logged but never bubble up;
// the underlying action already happened.
func (s *adminService) audit(ctx context.Context, adminID uuid.UUID, action, targetType string, targetID uuid.UUID, detail string) {
	entry := &model.AdminLog{
		AdminID:    adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   &targetID,
		Detail:     detail,
	}
	if err := s.repo.CreateLog(ctx, entry); err != nil {
		log.Printf("failed to write admin log %s: %v", fmt.Sprintf("%s/%s", action, targetID), err)
	}
}
