package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func authFixture(t *testing.T, users ...*model.User) (AuthService, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo(users...)
	tokens := NewTokenService("test-secret", time.Hour, 24*time.Hour)
	return NewAuthService(repo, tokens, nil), repo
}

func registerInput() dto.RegisterInput {
	return dto.RegisterInput{
		Username:  "jdoe",
		Email:     "jdoe@example.com",
		Password:  "correct horse",
		UserType:  model.UserTypeCandidate,
		FirstName: "Jane",
		LastName:  "Doe",
	}
}

func TestRegisterCandidate(t *testing.T) {
	svc, repo := authFixture(t)

	resp, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected tokens in the response")
	}
	if resp.User.PasswordHash != "" {
		t.Error("password hash leaked in response")
	}
	if resp.Company != nil {
		t.Error("candidate registration must not create a company")
	}

	stored, err := repo.FindByEmail(context.Background(), "jdoe@example.com")
	if err != nil {
		t.Fatalf("user was not persisted: %v", err)
	}
	if !stored.IsActive {
		t.Error("new accounts must start active")
	}
	if stored.Nationality != model.NationalityMongolian {
		t.Errorf("Nationality = %q, want default %q", stored.Nationality, model.NationalityMongolian)
	}
}

func TestRegisterEmployerNeedsCompanyName(t *testing.T) {
	svc, _ := authFixture(t)

	input := registerInput()
	input.UserType = model.UserTypeEmployer

	_, err := svc.Register(context.Background(), input)
	if statusOf(err) != http.StatusBadRequest {
		t.Errorf("employer without company_name status = %d, want 400", statusOf(err))
	}

	name := "Acme Corp"
	input.CompanyName = &name
	resp, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("employer Register returned error: %v", err)
	}
	if resp.Company == nil || resp.Company.Name != "Acme Corp" {
		t.Errorf("Company = %+v, want Acme Corp", resp.Company)
	}
}

func TestRegisterConflicts(t *testing.T) {
	registry := "AB12345678"
	existing := &model.User{
		ID:             uuid.New(),
		Username:       "taken",
		Email:          "taken@example.com",
		RegistryNumber: &registry,
	}

	svc, _ := authFixture(t, existing)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*dto.RegisterInput)
	}{
		{"duplicate email", func(in *dto.RegisterInput) { in.Email = "taken@example.com" }},
		{"duplicate username", func(in *dto.RegisterInput) { in.Username = "taken" }},
		{"duplicate registry number", func(in *dto.RegisterInput) { in.RegistryNumber = &registry }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := registerInput()
			tt.mutate(&input)
			_, err := svc.Register(ctx, input)
			if statusOf(err) != http.StatusConflict {
				t.Errorf("status = %d, want 409", statusOf(err))
			}
		})
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	active := &model.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		UserType:     model.UserTypeCandidate,
		IsActive:     true,
	}
	disabled := &model.User{
		ID:           uuid.New(),
		Username:     "mallory",
		Email:        "mallory@example.com",
		PasswordHash: string(hash),
		UserType:     model.UserTypeCandidate,
		IsActive:     false,
	}

	svc, _ := authFixture(t, active, disabled)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"valid credentials", "alice@example.com", "hunter2secret", http.StatusOK},
		{"wrong password", "alice@example.com", "wrong", http.StatusUnauthorized},
		{"unknown email", "nobody@example.com", "hunter2secret", http.StatusUnauthorized},
		{"deactivated account", "mallory@example.com", "hunter2secret", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(ctx, dto.LoginInput{Email: tt.email, Password: tt.password})
			if tt.want == http.StatusOK {
				if err != nil {
					t.Fatalf("Login returned error: %v", err)
				}
				if resp.AccessToken == "" {
					t.Error("expected access token")
				}
				return
			}
			if statusOf(err) != tt.want {
				t.Errorf("status = %d, want %d", statusOf(err), tt.want)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com", UserType: model.UserTypeCandidate, IsActive: true}
	repo := newMockUserRepo(user)
	tokens := NewTokenService("test-secret", time.Hour, 24*time.Hour)
	svc := NewAuthService(repo, tokens, nil)

	access, refresh, _, err := tokens.Generate(user)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), refresh); err != nil {
		t.Fatalf("Refresh with refresh token returned error: %v", err)
	}

	// An access token must not be accepted in the refresh flow.
	if _, err := svc.Refresh(context.Background(), access); statusOf(err) != http.StatusUnauthorized {
		t.Errorf("Refresh with access token status = %d, want 401", statusOf(err))
	}

	if _, err := svc.Refresh(context.Background(), "garbage"); statusOf(err) != http.StatusUnauthorized {
		t.Errorf("Refresh with garbage status = %d, want 401", statusOf(err))
	}
}
