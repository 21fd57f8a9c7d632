package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"hirelane/api/internal/config"
	"hirelane/api/internal/google"
	"hirelane/api/internal/mailer"
	"hirelane/api/internal/middleware"
	"hirelane/api/internal/repository"
	"hirelane/api/internal/service"
	"hirelane/api/internal/storage"
)

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	authService  *service.AuthService
	linkService  *service.LinkService
	appService   *service.ApplicationService
	sessions     *service.SessionService
	authz        service.Authorizer
	profiles     service.ProfileFetcher
	db           *pgxpool.Pool
	cache        *redis.Client
	users        *repository.UserRepository
	jobs         *repository.JobRepository
	applications *repository.ApplicationRepository
	store        *storage.ObjectStore
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	mail mailer.Mailer,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewEmailTokenRepository(db)
	linkRepo := repository.NewLinkedAccountRepository(db)
	jobRepo := repository.NewJobRepository(db)
	appRepo := repository.NewApplicationRepository(db)

	tokens := service.NewTokenService(tokenRepo, log)
	creds := service.NewCredentialService(userRepo)
	sessions := service.NewSessionService(userRepo, cfg, log)
	limiter := service.NewRedisCooldown(cache, cfg.Security.IssueCooldown)
	emails := service.NewEmailComposer(mail, cfg.Frontend.BaseURL, log)
	authz := service.NewRoleAuthorizer()

	auth := service.NewAuthService(userRepo, linkRepo, tokens, creds, sessions, limiter, emails, appRepo, authz, log)
	link := service.NewLinkService(userRepo, linkRepo, tokens, creds, sessions, appRepo, log)
	apps := service.NewApplicationService(jobRepo, appRepo, store, log)

	return HandlerSet{
		log:          log,
		cfg:          cfg,
		authService:  auth,
		linkService:  link,
		appService:   apps,
		sessions:     sessions,
		authz:        authz,
		profiles:     google.NewClient(cfg.Google),
		db:           db,
		cache:        cache,
		users:        userRepo,
		jobs:         jobRepo,
		applications: appRepo,
		store:        store,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.RegisterAccount)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/verify-email", h.VerifyEmail)
		auth.POST("/resend-verification", h.ResendVerification)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/magic-link", h.MagicLinkRequest)
		auth.POST("/magic-link/verify", h.MagicLinkVerify)
		auth.POST("/google", h.GoogleSignIn)
		auth.POST("/google/confirm-link", h.GoogleConfirmLink)
		auth.GET("/invitation/:token", h.VerifyInvitation)
		auth.POST("/invitation/accept", h.AcceptInvitation)

		protected := v1.Group("/auth")
		protected.Use(middleware.Auth(h.cfg, h.users))
		protected.GET("/me", h.Me)
		protected.POST("/password/change", h.ChangePassword)
	}

	jobs := v1.Group("/jobs")
	jobs.GET("", h.ListJobs)
	jobs.GET("/:id", h.GetJob)
	jobs.POST("/:id/apply", middleware.OptionalAuth(h.cfg, h.users), h.Apply)

	me := v1.Group("/me")
	me.Use(middleware.Auth(h.cfg, h.users))
	me.GET("/applications", h.MyApplications)

	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(h.cfg, h.users))
	{
		invites := admin.Group("")
		invites.Use(middleware.RequireAction(h.authz, service.ActionInviteUsers))
		invites.POST("/invitations", h.Invite)
		invites.POST("/invitations/resend", h.ResendInvite)

		review := admin.Group("")
		review.Use(middleware.RequireAction(h.authz, service.ActionListApplications))
		review.GET("/applications", h.AdminListApplications)
		review.GET("/applications/:id/resume", h.AdminResumeURL)

		manage := admin.Group("")
		manage.Use(middleware.RequireAction(h.authz, service.ActionManageJobs))
		manage.POST("/jobs", h.CreateJob)
		manage.PATCH("/jobs/:id/status", h.UpdateJobStatus)
	}
}
