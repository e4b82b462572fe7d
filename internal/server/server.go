package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "projecthub/docs"
	"projecthub/internal/auth"
	"projecthub/internal/config"
	"projecthub/internal/database"
	"projecthub/internal/handler"
	"projecthub/internal/logger"
	"projecthub/internal/maintenance"
	"projecthub/internal/middleware"
	"projecthub/internal/repository"
	"projecthub/internal/response"
	"projecthub/internal/service"
	"projecthub/internal/storage"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config

	cleaner *maintenance.Cleaner
	redis   *redis.Client
	log     *zap.Logger
}

// Init connects to the configured database, migrates it and builds the server.
func Init(cfg *config.Config) (*Server, error) {
	log := logger.WithModule("server")

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("connected to database", zap.String("driver", cfg.Database.Driver))

	return New(cfg, db)
}

// New wires repositories, services and routes on top of an open database.
func New(cfg *config.Config, db *gorm.DB) (*Server, error) {
	log := logger.WithModule("server")
	response.SetExposeInternal(!cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := storage.NewLocal(cfg.Uploads.Dir, cfg.Uploads.MaxSizeBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	orphanRepo := repository.NewOrphanRepository(db)

	// Services
	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userSvc := service.NewUserService(userRepo, tokens)
	projectSvc := service.NewProjectService(projectRepo, userRepo, taskRepo, noteRepo, inviteRepo)
	taskSvc := service.NewTaskService(projectRepo, taskRepo)
	noteSvc := service.NewNoteService(projectRepo, noteRepo)
	inviteSvc := service.NewInviteService(inviteRepo)
	uploadSvc := service.NewUploadService(projectRepo, uploadRepo, store)

	// Handlers
	userHandler := handler.NewUserHandler(userSvc)
	projectHandler := handler.NewProjectHandler(projectSvc, userSvc)
	taskHandler := handler.NewTaskHandler(taskSvc, userSvc)
	noteHandler := handler.NewNoteHandler(noteSvc)
	inviteHandler := handler.NewInviteHandler(inviteSvc)
	uploadHandler := handler.NewUploadHandler(uploadSvc)
	healthHandler := handler.NewHealthHandler(db)

	s := &Server{DB: db, Config: cfg, log: log}

	var rates middleware.RateStore
	if cfg.RateLimit.Redis.Address != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.Redis.Address,
			Password: cfg.RateLimit.Redis.Password,
			DB:       cfg.RateLimit.Redis.DB,
		})
		rates = middleware.NewRedisRateStore(s.redis, "")
		log.Info("rate limit counters stored in redis", zap.String("address", cfg.RateLimit.Redis.Address))
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Server.CORSOrigins),
	)
	r.NoRoute(middleware.NotFound)
	r.NoMethod(middleware.MethodNotAllowed)

	// Public routes
	r.GET("/api/health", healthHandler.Health)
	r.GET("/api/uploads/:filename", uploadHandler.Serve)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	authRoutes := r.Group("/api/auth")
	if cfg.RateLimit.Enabled {
		authRoutes.Use(middleware.RateLimit(rates, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	authRoutes.POST("/register", userHandler.Register)
	authRoutes.POST("/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := r.Group("/api")
	authorized.Use(middleware.JWTAuthMiddleware(tokens))
	{
		authorized.GET("/auth/me", userHandler.Me)

		// Project routes
		authorized.GET("/projects", projectHandler.List)
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects/:id", projectHandler.Get)
		authorized.PATCH("/projects/:id", projectHandler.Update)
		authorized.DELETE("/projects/:id", projectHandler.Delete)
		authorized.POST("/projects/:id/invite", projectHandler.Invite)

		// Invite routes
		authorized.GET("/invites", inviteHandler.List)
		authorized.POST("/invites/:id/respond", inviteHandler.Respond)

		// Task routes
		authorized.GET("/projects/:id/tasks", taskHandler.List)
		authorized.POST("/projects/:id/tasks", taskHandler.Create)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PATCH("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)

		// Note routes
		authorized.GET("/projects/:id/notes", noteHandler.List)
		authorized.POST("/projects/:id/notes", noteHandler.Create)
		authorized.DELETE("/notes/:id", noteHandler.Delete)

		// Upload routes
		authorized.POST("/uploads", uploadHandler.Upload)
		authorized.DELETE("/uploads/:filename", uploadHandler.Delete)
	}

	if cfg.Maintenance.Enabled {
		s.cleaner = maintenance.NewCleaner(orphanRepo, uploadRepo, store,
			maintenance.WithSchedule(cfg.Maintenance.Schedule),
			maintenance.WithGracePeriod(cfg.Maintenance.GracePeriod),
		)
	}

	s.Engine = r
	return s, nil
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (s *Server) Run() error {
	if s.cleaner != nil {
		if err := s.cleaner.Start(); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.Config.Server.Port),
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server running", zap.Int("port", s.Config.Server.Port), zap.String("env", s.Config.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.Close()
			return fmt.Errorf("failed to listen: %w", err)
		}
	case <-ctx.Done():
	}
	s.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.log.Info("server exited properly")
	return nil
}

// Close stops the maintenance schedule and releases the store connections.
func (s *Server) Close() {
	if s.cleaner != nil {
		<-s.cleaner.Stop().Done()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.log.Warn("failed to close database", zap.Error(err))
		}
	}
}
