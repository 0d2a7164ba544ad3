package main

import (
	"context"
	"flag"
	"os"

	"employee-management/migrations"
	"employee-management/pkg/config"
	"employee-management/pkg/database/postgresql"
	applogger "employee-management/pkg/logger"
	"employee-management/seeders"

	"go.uber.org/zap"
)

func main() {
	runMigrate := flag.Bool("migrate", false, "Apply database migrations")
	runLeave := flag.Bool("leave", false, "Seed default leave types")
	runTeams := flag.Bool("teams", false, "Seed default teams")
	runAdmin := flag.Bool("admin", false, "Create the admin user (password from SEED_ADMIN_PASSWORD)")
	runAll := flag.Bool("all", false, "Run every step (equivalent to -migrate -leave -teams -admin)")
	flag.Parse()

	cfg := config.New()
	logger := applogger.NewLogger("", false)
	defer func() { _ = logger.Sync() }()

	if !*runMigrate && !*runLeave && !*runTeams && !*runAdmin && !*runAll {
		logger.Warn("No seeder selected")
		flag.PrintDefaults()
		return
	}

	ctx := context.Background()
	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()

	if *runAll || *runMigrate {
		if err := postgresql.Migrate(ctx, dbPool, migrations.FS, logger); err != nil {
			logger.Fatal("Migration failed", zap.Error(err))
		}
	}
	if *runAll || *runLeave {
		if err := seeders.SeedLeaveTypes(ctx, dbPool, logger); err != nil {
			logger.Fatal("Leave type seeding failed", zap.Error(err))
		}
	}
	if *runAll || *runTeams {
		if err := seeders.SeedTeams(ctx, dbPool, logger); err != nil {
			logger.Fatal("Team seeding failed", zap.Error(err))
		}
	}
	if *runAll || *runAdmin {
		if err := seeders.SeedAdmin(ctx, dbPool, cfg, os.Getenv("SEED_ADMIN_PASSWORD"), logger); err != nil {
			logger.Fatal("Admin seeding failed", zap.Error(err))
		}
	}

	logger.Info("Seeding finished")
}
