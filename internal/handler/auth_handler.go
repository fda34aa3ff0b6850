package handler

import (
	"net/http"
	"time"

	"ajil.mn/jobmarket/internal/dto"
	"ajil.mn/jobmarket/internal/service"
	"ajil.mn/jobmarket/pkg/response"
	"ajil.mn/jobmarket/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type AuthHandler struct {
	service     service.AuthService
	redisClient *redis.Client
	loginLimit  time.Duration
}

func NewAuthHandler(service service.AuthService, redisClient *redis.Client, loginLimit time.Duration) *AuthHandler {
	return &AuthHandler{
		service:     service,
		redisClient: redisClient,
		loginLimit:  loginLimit,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if ok := h.allowIP(c, "register"); !ok {
		return
	}

	resp, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if ok := h.allowIP(c, "login"); !ok {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var input dto.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.Refresh(c.Request.Context(), input.RefreshToken)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) SendVerificationCode(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if ok := h.allowIP(c, "send_code"); !ok {
		return
	}

	if err := h.service.SendVerificationCode(c.Request.Context(), input.Email); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
}

func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	valid, err := h.service.VerifyCode(c.Request.Context(), input.Email, input.Code)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

func (h *AuthHandler) allowIP(c *gin.Context, action string) bool {
	allowed, err := service.CheckAndSetIPRateLimit(c.Request.Context(), h.redisClient, c.ClientIP(), action, h.loginLimit)
	if err != nil {
		response.ResponseError(c, err)
		return false
	}
	if !allowed {
		c.Header("Retry-After", "3")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, slow down"})
		return false
	}
	return true
}
