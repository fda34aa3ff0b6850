package service

import (
	"testing"
	"time"

	"ajil.mn/jobmarket/internal/model"
	"github.com/google/uuid"
)

func testUser(userType string) *model.User {
	return &model.User{
		ID:       uuid.New(),
		Username: "jdoe",
		Email:    "jdoe@example.com",
		UserType: userType,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour, 24*time.Hour)
	user := testUser(model.UserTypeCandidate)

	access, refresh, expiresAt, err := svc.Generate(user)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected non-empty tokens")
	}
	if expiresAt <= time.Now().Unix() {
		t.Fatalf("expiry %d is not in the future", expiresAt)
	}

	claims, ok := svc.Verify(access)
	if !ok {
		t.Fatal("access token did not verify")
	}
	if claims.UserID != user.ID.String() {
		t.Errorf("UserID = %q, want %q", claims.UserID, user.ID)
	}
	if claims.Kind != TokenKindAccess {
		t.Errorf("Kind = %q, want %q", claims.Kind, TokenKindAccess)
	}

	refreshClaims, ok := svc.Verify(refresh)
	if !ok {
		t.Fatal("refresh token did not verify")
	}
	if refreshClaims.Kind != TokenKindRefresh {
		t.Errorf("refresh Kind = %q, want %q", refreshClaims.Kind, TokenKindRefresh)
	}
}

func TestTokenVerifyRejects(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour, 24*time.Hour)
	other := NewTokenService("other-secret", time.Hour, 24*time.Hour)
	expired := NewTokenService("test-secret", -time.Minute, 24*time.Hour)

	user := testUser(model.UserTypeCandidate)
	foreign, _, _, err := other.Generate(user)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	stale, _, _, err := expired.Generate(user)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong signature", foreign},
		{"expired", stale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := svc.Verify(tt.token); ok {
				t.Errorf("Verify(%q) = true, want false", tt.name)
			}
		})
	}
}

func TestNormalizeUserType(t *testing.T) {
	admin := "admin"
	viewer := "viewer"

	tests := []struct {
		name string
		user *model.User
		want string
	}{
		{"plain candidate", &model.User{UserType: model.UserTypeCandidate}, model.UserTypeCandidate},
		{"plain employer", &model.User{UserType: model.UserTypeEmployer}, model.UserTypeEmployer},
		{"admin via user type", &model.User{UserType: model.UserTypeAdmin}, model.UserTypeAdmin},
		{"admin via legacy role", &model.User{UserType: model.UserTypeCandidate, Role: &admin}, model.UserTypeAdmin},
		{"non-admin legacy role ignored", &model.User{UserType: model.UserTypeEmployer, Role: &viewer}, model.UserTypeEmployer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeUserType(tt.user); got != tt.want {
				t.Errorf("NormalizeUserType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDemoToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wantOK   bool
		wantID   string
		wantType string
	}{
		{"fake-jwt candidate", "fake-jwt-token-7", true, DemoUserID("7").String(), model.UserTypeCandidate},
		{"fake-jwt employer", "fake-jwt-token-42", true, DemoUserID("42").String(), model.UserTypeEmployer},
		{"underscore format", "token_13_abcdef", true, DemoUserID("13").String(), model.UserTypeCandidate},
		{"underscore employer", "token_42_xyz", true, DemoUserID("42").String(), model.UserTypeEmployer},
		{"underscore too short", "token_13", false, "", ""},
		{"empty id", "fake-jwt-token-", false, "", ""},
		{"real-looking jwt", "eyJhbGciOiJIUzI1NiJ9.e30.sig", false, "", ""},
		{"empty", "", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, ok := ParseDemoToken(tt.token)
			if ok != tt.wantOK {
				t.Fatalf("ParseDemoToken(%q) ok = %v, want %v", tt.token, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if claims.UserID != tt.wantID {
				t.Errorf("UserID = %q, want %q", claims.UserID, tt.wantID)
			}
			if claims.UserType != tt.wantType {
				t.Errorf("UserType = %q, want %q", claims.UserType, tt.wantType)
			}
			// Synthesized ids must parse, or every downstream handler
			// rejects the identity.
			if _, err := uuid.Parse(claims.UserID); err != nil {
				t.Errorf("UserID %q is not a valid uuid: %v", claims.UserID, err)
			}
		})
	}
}

func TestDemoUserIDDeterministic(t *testing.T) {
	if DemoUserID("42") != DemoUserID("42") {
		t.Error("same demo id mapped to different user ids")
	}
	if DemoUserID("42") == DemoUserID("7") {
		t.Error("distinct demo ids collided")
	}
}
