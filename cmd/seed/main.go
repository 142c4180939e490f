package main

import (
	"flag"

	"github.com/joho/godotenv"
	"github.com/refermarket/backend/internal/config"
	"github.com/refermarket/backend/internal/database"
	"github.com/refermarket/backend/internal/logger"
	"github.com/refermarket/backend/internal/seed"
	"go.uber.org/zap"
)

func main() {
	dev := flag.Bool("dev", false, "seed fake users, referrals and activity on top of the platform catalog")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Initialize(cfg.LogLevel, ""); err != nil {
		panic(err)
	}
	defer logger.Close()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	seeder := seed.NewSeeder(db)
	if *dev {
		err = seeder.SeedDev()
	} else {
		err = seeder.SeedPlatforms()
	}
	if err != nil {
		logger.Log.Fatal("Seeding failed", zap.Error(err))
	}

	logger.Log.Info("Seeding complete")
}
