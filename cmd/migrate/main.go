// Command migrate applies the schema and indexes without starting the server.
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/yukikurage/assessment-api/internal/config"
	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/logging"
	"go.uber.org/zap"
)

func main() {
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

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}
	logger.Info("migrations applied", zap.String("driver", cfg.Database.Driver))
}
