package server

import (
	"context"
	"log"
	"strings"
	"time"

	"ajil.mn/jobmarket/internal/cache"
	"ajil.mn/jobmarket/internal/config"
	"ajil.mn/jobmarket/internal/handler"
	"ajil.mn/jobmarket/internal/middleware"
	"ajil.mn/jobmarket/internal/repository"
	"ajil.mn/jobmarket/internal/service"
	"ajil.mn/jobmarket/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	cfg         *config.Config
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	// Repositories
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	jobRepo := repository.NewJobRepository(db)
	resumeRepo := repository.NewResumeRepository(db)
	chatRepo := repository.NewChatRepository(db)
	evalRepo := repository.NewEvaluationRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Shared infrastructure
	appCache := cache.New(redisClient, "jobmarket")
	monitor := service.NewPerformanceMonitor()

	var fileStorage storage.FileStorage
	if cfg.CloudinaryURL != "" || cfg.CloudinaryCloudName != "" {
		fs, err := storage.NewCloudinaryStorage(storage.CloudinaryConfig{
			URL:        cfg.CloudinaryURL,
			CloudName:  cfg.CloudinaryCloudName,
			APIKey:     cfg.CloudinaryAPIKey,
			APISecret:  cfg.CloudinaryAPISecret,
			BaseFolder: cfg.CloudinaryUploadFolder,
		})
		if err != nil {
			log.Fatalf("failed to initialize cloudinary storage: %v", err)
		}
		fileStorage = fs
	} else {
		log.Println("cloudinary is not configured, file uploads are disabled")
	}

	var searchSvc service.SearchService
	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = service.NewSearchService(meiliClient)
	}

	// Services
	tokenSvc := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authSvc := service.NewAuthService(userRepo, tokenSvc, redisClient)
	profileSvc := service.NewProfileService(userRepo, evalRepo, subRepo, fileStorage)
	resumeSvc := service.NewResumeService(resumeRepo, fileStorage)
	companySvc := service.NewCompanyService(companyRepo, userRepo, appCache)
	jobSvc := service.NewJobService(jobRepo, companyRepo, resumeRepo, searchSvc, appCache)
	chatSvc := service.NewChatService(chatRepo, userRepo, redisClient)
	adminSvc := service.NewAdminService(adminRepo, userRepo, companyRepo, monitor)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, redisClient, cfg.RateLimitLogin)
	profileHandler := handler.NewProfileHandler(profileSvc)
	resumeHandler := handler.NewResumeHandler(resumeSvc)
	companyHandler := handler.NewCompanyHandler(companySvc, fileStorage)
	jobHandler := handler.NewJobHandler(jobSvc, redisClient, cfg.RateLimitApply)
	chatHandler := handler.NewChatHandler(chatSvc, redisClient, cfg.RateLimitChatStart)
	adminHandler := handler.NewAdminHandler(adminSvc)
	healthHandler := handler.NewHealthHandler(db, redisClient, monitor)

	// Background loops
	go expireLoop("close expired jobs", time.Hour, jobRepo.CloseExpired)
	go expireLoop("expire overdue subscriptions", 6*time.Hour, subRepo.ExpireOverdue)

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(monitor.Middleware())

	authMiddleware := middleware.NewAuth(tokenSvc, cfg.AppEnv)

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/send-code", authHandler.SendVerificationCode)
		auth.POST("/verify-code", authHandler.VerifyCode)
	}

	api.GET("/jobs", jobHandler.List)
	api.GET("/jobs/search", jobHandler.Search)
	api.GET("/jobs/:id", jobHandler.Get)
	api.GET("/companies", companyHandler.List)
	api.GET("/companies/:id", companyHandler.Get)
	api.GET("/companies/:id/reviews", companyHandler.ListReviews)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Profile
		protected.GET("/profile/me", profileHandler.Me)
		protected.PUT("/profile", profileHandler.UpdateMe)
		protected.POST("/profile/avatar", profileHandler.UploadAvatar)

		// Resumes
		protected.POST("/resumes", resumeHandler.Create)
		protected.GET("/resumes", resumeHandler.List)
		protected.GET("/resumes/default", resumeHandler.GetDefault)
		protected.GET("/resumes/:id", resumeHandler.Get)
		protected.PUT("/resumes/:id", resumeHandler.Update)
		protected.DELETE("/resumes/:id", resumeHandler.Delete)
		protected.PUT("/resumes/:id/set-default", resumeHandler.SetDefault)
		protected.POST("/resumes/:id/file", resumeHandler.UploadFile)

		// Jobs
		protected.POST("/jobs", jobHandler.Create)
		protected.PUT("/jobs/:id", jobHandler.Update)
		protected.DELETE("/jobs/:id", jobHandler.Delete)
		protected.POST("/jobs/:id/apply", jobHandler.Apply)
		protected.GET("/jobs/:id/applications", jobHandler.ListApplicants)
		protected.POST("/jobs/:id/save", jobHandler.ToggleSaved)
		protected.GET("/jobs/saved/me", jobHandler.ListSaved)
		protected.GET("/applications/me", jobHandler.MyApplications)
		protected.PUT("/applications/:id/status", jobHandler.UpdateApplicationStatus)

		// Companies
		protected.POST("/companies", companyHandler.Create)
		protected.PUT("/companies/:id", companyHandler.Update)
		protected.DELETE("/companies/:id", companyHandler.Delete)
		protected.POST("/companies/:id/logo", companyHandler.UploadLogo)
		protected.GET("/companies/:id/members", companyHandler.Members)
		protected.POST("/companies/:id/members", companyHandler.AddMember)
		protected.DELETE("/companies/:id/members/:userId", companyHandler.RemoveMember)
		protected.POST("/companies/:id/reviews", companyHandler.CreateReview)

		// Evaluations
		protected.POST("/evaluations", profileHandler.CreateEvaluation)
		protected.GET("/candidates/:id/evaluations", profileHandler.ListEvaluations)

		// Subscriptions
		protected.POST("/subscriptions", profileHandler.Subscribe)
		protected.GET("/subscriptions/me", profileHandler.MySubscriptions)
		protected.DELETE("/subscriptions/:id", profileHandler.CancelSubscription)

		// Chat
		protected.POST("/chat/rooms", chatHandler.StartChat)
		protected.GET("/chat/rooms", chatHandler.ListRooms)
		protected.GET("/chat/rooms/:id", chatHandler.GetRoom)
		protected.PUT("/chat/rooms/:id/close", chatHandler.CloseRoom)
		protected.PUT("/chat/rooms/:id/reopen", chatHandler.RequestReopen)
		protected.PUT("/chat/rooms/:id/reopen/accept", chatHandler.AcceptReopen)
		protected.DELETE("/chat/rooms/:id", chatHandler.HideRoom)
		protected.POST("/chat/rooms/:id/messages", chatHandler.SendMessage)
		protected.GET("/chat/rooms/:id/messages", chatHandler.GetMessages)
		protected.PUT("/chat/rooms/:id/read", chatHandler.MarkRead)
		protected.POST("/chat/rooms/:id/typing", chatHandler.Typing)
		protected.DELETE("/chat/messages/:messageId", chatHandler.DeleteMessage)
		protected.GET("/chat/ws", chatHandler.HandleWebSocket)

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireRoles("admin"))
		{
			adminGroup.GET("/dashboard", adminHandler.Dashboard)
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.PUT("/users/:id/active", adminHandler.SetUserActive)
			adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
			adminGroup.PUT("/companies/:id/verify", adminHandler.VerifyCompany)
			adminGroup.GET("/logs", adminHandler.ListLogs)
			adminGroup.GET("/performance", adminHandler.Performance)
		}
	}

	return &Server{
		engine:      router,
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run() error {
	return s.engine.Run(":" + s.cfg.Port)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := []string{"http://localhost:3000"}
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func expireLoop(name string, every time.Duration, fn func(ctx context.Context) (int64, error)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for range ticker.C {
		n, err := fn(context.Background())
		if err != nil {
			log.Printf("background task %q failed: %v", name, err)
			continue
		}
		if n > 0 {
			log.Printf("background task %q updated %d rows", name, n)
		}
	}
}
