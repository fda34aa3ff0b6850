package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ajil.mn/jobmarket/internal/model"
	"ajil.mn/jobmarket/internal/service"
	"ajil.mn/jobmarket/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(tokens service.TokenService, appEnv string) *gin.Engine {
	auth := NewAuth(tokens, appEnv)

	router := gin.New()
	protected := router.Group("", auth.RequireAuth())
	// Resolves the id the way every real handler does, so an identity the
	// middleware admits but GetUserID cannot parse fails the tests here.
	protected.GET("/me", func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":   userID.String(),
			"user_type": c.GetString("user_type"),
		})
	})

	admin := router.Group("/admin", auth.RequireAuth(), auth.RequireRoles("admin"))
	admin.GET("/dashboard", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router
}

func request(router *gin.Engine, path, authHeader, query string) *httptest.ResponseRecorder {
	target := path
	if query != "" {
		target += "?" + query
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	tokens := service.NewTokenService("test-secret", time.Hour, 24*time.Hour)
	user := &model.User{ID: uuid.New(), Username: "jdoe", Email: "j@example.com", UserType: model.UserTypeCandidate}
	access, refresh, _, err := tokens.Generate(user)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	router := newTestRouter(tokens, "development")

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing token", "", "", http.StatusUnauthorized},
		{"valid bearer", "Bearer " + access, "", http.StatusOK},
		{"bare token header", access, "", http.StatusOK},
		{"query fallback", "", "token=" + access, http.StatusOK},
		{"refresh token rejected", "Bearer " + refresh, "", http.StatusForbidden},
		{"garbage token", "Bearer nonsense", "", http.StatusForbidden},
		{"demo token in development", "Bearer fake-jwt-token-7", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(router, "/me", tt.header, tt.query)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestDemoTokenResolvesUserID(t *testing.T) {
	tokens := service.NewTokenService("test-secret", time.Hour, 24*time.Hour)
	router := newTestRouter(tokens, "development")

	w := request(router, "/me", "Bearer fake-jwt-token-42", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body struct {
		UserID   string `json:"user_id"`
		UserType string `json:"user_type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if want := service.DemoUserID("42").String(); body.UserID != want {
		t.Errorf("user_id = %q, want %q", body.UserID, want)
	}
	if body.UserType != model.UserTypeEmployer {
		t.Errorf("user_type = %q, want %q", body.UserType, model.UserTypeEmployer)
	}
}

func TestDemoTokenDisabledInProduction(t *testing.T) {
	tokens := service.NewTokenService("test-secret", time.Hour, 24*time.Hour)
	router := newTestRouter(tokens, "production")

	w := request(router, "/me", "Bearer fake-jwt-token-7", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("demo token in production status = %d, want 403", w.Code)
	}
}

func TestRequireRolesUnauthenticated(t *testing.T) {
	tokens := service.NewTokenService("test-secret", time.Hour, 24*time.Hour)
	auth := NewAuth(tokens, "development")

	// Role gate mounted without the auth middleware in front of it.
	router := gin.New()
	router.GET("/admin", auth.RequireRoles("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := request(router, "/admin", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	tokens := service.NewTokenService("test-secret", time.Hour, 24*time.Hour)
	router := newTestRouter(tokens, "development")

	candidate := &model.User{ID: uuid.New(), UserType: model.UserTypeCandidate}
	candidateToken, _, _, err := tokens.Generate(candidate)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	adminUser := &model.User{ID: uuid.New(), UserType: model.UserTypeAdmin}
	adminToken, _, _, err := tokens.Generate(adminUser)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	legacyRole := "admin"
	legacyAdmin := &model.User{ID: uuid.New(), UserType: model.UserTypeCandidate, Role: &legacyRole}
	legacyToken, _, _, err := tokens.Generate(legacyAdmin)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"candidate blocked", candidateToken, http.StatusForbidden},
		{"admin allowed", adminToken, http.StatusOK},
		{"legacy role admin allowed", legacyToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(router, "/admin/dashboard", "Bearer "+tt.token, "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
