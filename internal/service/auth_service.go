package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"ajil.mn/jobmarket/internal/repository"
	"ajil.mn/jobmarket/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const verifyCodeTTL = 10 * time.Minute

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	SendVerificationCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (bool, error)
}

type authService struct {
	repo        repository.UserRepository
	tokens      TokenService
	redisClient *redis.Client
}

func NewAuthService(repo repository.UserRepository, tokens TokenService, redisClient *redis.Client) AuthService {
	return &authService{
		repo:        repo,
		tokens:      tokens,
		redisClient: redisClient,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	if err := s.ensureUserUnique(ctx, input); err != nil {
		return nil, err
	}

	if input.UserType == model.UserTypeEmployer && (input.CompanyName == nil || strings.TrimSpace(*input.CompanyName) == "") {
		return nil, apperror.New(http.StatusBadRequest, "company_name is required for employer accounts", apperror.ErrBadRequest)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	nationality := input.Nationality
	if nationality == "" {
		nationality = model.NationalityMongolian
	}

	user := &model.User{
		Username:       input.Username,
		Email:          input.Email,
		PasswordHash:   string(hashedPassword),
		UserType:       input.UserType,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Phone:          normalizeOptional(input.Phone),
		Nationality:    nationality,
		RegistryNumber: normalizeOptional(input.RegistryNumber),
		PassportNumber: normalizeOptional(input.PassportNumber),
		IsActive:       true,
	}

	var company *model.Company
	var membership *model.CompanyUser
	if input.UserType == model.UserTypeEmployer {
		company = &model.Company{Name: strings.TrimSpace(*input.CompanyName)}
		membership = &model.CompanyUser{
			Role:      model.CompanyRoleAdmin,
			IsPrimary: true,
		}
	}

	if err := s.repo.Create(ctx, user, company, membership); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user, company)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusUnauthorized, "invalid credentials", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperror.New(http.StatusForbidden, "account is deactivated", apperror.ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.New(http.StatusUnauthorized, "invalid credentials", apperror.ErrUnauthorized)
	}

	var company *model.Company
	if membership, err := s.repo.PrimaryMembership(ctx, user.ID); err == nil {
		company = membership.Company
	}

	return s.buildAuthResponse(user, company)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, ok := s.tokens.Verify(refreshToken)
	if !ok || claims.Kind != TokenKindRefresh {
		return nil, apperror.New(http.StatusUnauthorized, "invalid refresh token", apperror.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperror.New(http.StatusUnauthorized, "invalid refresh token", apperror.ErrUnauthorized)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusUnauthorized, "invalid refresh token", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	return s.buildAuthResponse(user, nil)
}

// SendVerificationCode stores a short-lived code in Redis under the email.
// Delivery is out of band; the code is logged in development only.
func (s *authService) SendVerificationCode(ctx context.Context, email string) error {
	if s.redisClient == nil {
		return errors.New("verification codes require redis")
	}

	code := uuid.NewString()[:6]
	key := fmt.Sprintf("verify_code:%s", email)
	return s.redisClient.Set(ctx, key, code, verifyCodeTTL).Err()
}

func (s *authService) VerifyCode(ctx context.Context, email, code string) (bool, error) {
	if s.redisClient == nil {
		return false, errors.New("verification codes require redis")
	}

	key := fmt.Sprintf("verify_code:%s", email)
	stored, err := s.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if stored != code {
		return false, nil
	}

	s.redisClient.Del(ctx, key)
	return true, nil
}

func (s *authService) buildAuthResponse(user *model.User, company *model.Company) (*dto.AuthResponse, error) {
	access, refresh, expiresAt, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    expiresAt,
		User:         user,
		Company:      company,
	}, nil
}

func (s *authService) ensureUserUnique(ctx context.Context, input dto.RegisterInput) error {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return apperror.New(http.StatusConflict, "email already registered", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return apperror.New(http.StatusConflict, "username already taken", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if input.RegistryNumber != nil && *input.RegistryNumber != "" {
		if _, err := s.repo.FindByRegistryNumber(ctx, *input.RegistryNumber); err == nil {
			return apperror.New(http.StatusConflict, "registry number already registered", apperror.ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}

	result := trimmed
	return &result
}
