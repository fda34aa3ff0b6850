package handler

import (
	"net/http"
	"time"

	"ajil.mn/jobmarket/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
	monitor     *service.PerformanceMonitor
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, monitor *service.PerformanceMonitor) *HealthHandler {
	return &HealthHandler{db: db, redisClient: redisClient, monitor: monitor}
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{}

	if sqlDB, err := h.db.DB(); err != nil {
		checks["database"] = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		checks["database"] = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if h.redisClient == nil {
		checks["redis"] = "disabled"
	} else if err := h.redisClient.Ping(c.Request.Context()).Err(); err != nil {
		checks["redis"] = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["redis"] = "ok"
	}

	c.JSON(status, gin.H{
		"status": http.StatusText(status),
		"uptime": h.monitor.Uptime().Round(time.Second).String(),
		"checks": checks,
	})
}
