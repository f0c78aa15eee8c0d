package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yukikurage/assessment-api/internal/config"
	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/logging"
	"github.com/yukikurage/assessment-api/internal/router"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.GinMode)

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	r, err := router.Setup(cfg, db, logger)
	if err != nil {
		logger.Fatal("failed to set up router", zap.Error(err))
	}

	logger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("gin_mode", cfg.Server.GinMode))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
