package service

import (
	"strings"
	"time"

	"ajil.mn/jobmarket/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Claims is the payload embedded in both access and refresh tokens.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Generate(user *model.User) (access string, refresh string, expiresAt int64, err error)
	// Verify returns the decoded claims, or (nil, false) on any failure:
	// expired, malformed, wrong signature. It never returns an error.
	Verify(token string) (*Claims, bool)
}

type tokenService struct {
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) TokenService {
	return &tokenService{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *tokenService) Generate(user *model.User) (string, string, int64, error) {
	userType := NormalizeUserType(user)
	accessExpiry := time.Now().Add(s.accessTTL)

	access, err := s.sign(user, userType, TokenKindAccess, accessExpiry)
	if err != nil {
		return "", "", 0, err
	}

	refresh, err := s.sign(user, userType, TokenKindRefresh, time.Now().Add(s.refreshTTL))
	if err != nil {
		return "", "", 0, err
	}

	return access, refresh, accessExpiry.Unix(), nil
}

func (s *tokenService) sign(user *model.User, userType, kind string, expiresAt time.Time) (string, error) {
	claims := Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		UserType: userType,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *tokenService) Verify(tokenString string) (*Claims, bool) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, false
	}

	return claims, true
}

// NormalizeUserType collapses the legacy role column into the user type:
// either field saying "admin" wins.
func NormalizeUserType(user *model.User) string {
	if user.UserType == model.UserTypeAdmin {
		return model.UserTypeAdmin
	}
	if user.Role != nil && *user.Role == model.UserTypeAdmin {
		return model.UserTypeAdmin
	}
	return user.UserType
}

// demoNamespace seeds the deterministic ids synthesized for demo tokens, so
// "fake-jwt-token-42" always resolves to the same user id.
var demoNamespace = uuid.MustParse("7b7cdb0f-1f24-4f9d-8d26-2c1e9f6a5b30")

// DemoUserID maps a numeric demo id to its synthesized UUID.
func DemoUserID(id string) uuid.UUID {
	return uuid.NewSHA1(demoNamespace, []byte(id))
}

// ParseDemoToken accepts the development bypass token formats
// "fake-jwt-token-<id>" and "token_<id>_...", synthesizing claims the way
// the demo frontend expects: id 42 is an employer, everything else a
// candidate. Returns (nil, false) for anything else.
func ParseDemoToken(token string) (*Claims, bool) {
	var id string
	switch {
	case strings.HasPrefix(token, "fake-jwt-token-"):
		id = strings.TrimPrefix(token, "fake-jwt-token-")
	case strings.HasPrefix(token, "token_"):
		parts := strings.Split(token, "_")
		if len(parts) < 3 {
			return nil, false
		}
		id = parts[1]
	default:
		return nil, false
	}

	if id == "" {
		return nil, false
	}

	userType := model.UserTypeCandidate
	if id == "42" {
		userType = model.UserTypeEmployer
	}

	return &Claims{
		UserID:   DemoUserID(id).String(),
		Username: "demo-" + id,
		UserType: userType,
		Kind:     TokenKindAccess,
	}, true
}
