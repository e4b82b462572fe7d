package main

import (
	"os"

	"go.uber.org/zap"

	"projecthub/internal/config"
	"projecthub/internal/logger"
	"projecthub/internal/server"
)

// @title           ProjectHub API
// @version         1.0
// @description     Multi-tenant projects with members, invites, tasks, notes and file uploads.

// @host      localhost:5000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	if err := logger.Init("info", false); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", zap.Error(err))
		os.Exit(1)
	}
	if err := logger.Init(cfg.Server.LogLevel, !cfg.IsProduction()); err != nil {
		logger.Error("failed to configure logger", zap.Error(err))
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	s, err := server.Init(cfg)
	if err != nil {
		logger.Error("server initialization failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	if err := s.Run(); err != nil {
		logger.Error("server stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
