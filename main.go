// main.go
package main

import (
	"context"
	"log"

	"pressing-booking/cmd"
	"pressing-booking/internal/app"
	"pressing-booking/internal/data/repository"
	"pressing-booking/internal/jobs"
	"pressing-booking/internal/wire"
	"pressing-booking/pkg/database"
	"pressing-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Apply migrations
	if config.Database.Migrate {
		migrator, err := app.NewMigrator(database.ConnString(config.Database), "db/migrations", logger)
		if err != nil {
			logger.Fatal("Failed to init migrator", zap.Error(err))
		}
		if err := migrator.Run(context.Background()); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		migrator.Close()
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	application := wire.Wiring(repos, config, logger)

	// Weekly subscription credit reset
	if config.Credit.RunReset {
		resetJob := jobs.NewCreditReset(application.Service.Credit, logger)
		if err := resetJob.Start(); err != nil {
			logger.Fatal("Failed to schedule credit reset", zap.Error(err))
		}
		defer resetJob.Stop()
	}

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(application.Router, config.App.Port)
}
