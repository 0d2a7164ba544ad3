package seeders

import (
	"context"
	"errors"
	"fmt"

	"employee-management/internal/dto"
	"employee-management/internal/repositories"
	"employee-management/internal/services"
	"employee-management/pkg/config"
	"employee-management/pkg/customvalidator"
	"employee-management/pkg/empid"
	"employee-management/pkg/filestorage"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrAdminPasswordRequired = errors.New("SEED_ADMIN_PASSWORD must be set to seed the admin user")

// SeedLeaveTypes upserts the default leave allowances.
func SeedLeaveTypes(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	repo := repositories.NewLeaveRepository(db, logger)
	for _, lt := range defaultLeaveTypes {
		if err := repo.UpsertType(ctx, lt.LeaveType, lt.Count); err != nil {
			return fmt.Errorf("failed to seed leave type %q: %w", lt.LeaveType, err)
		}
	}
	types, err := repo.ListTypes(ctx)
	if err != nil {
		return err
	}
	for _, lt := range types {
		logger.Debug("Leave type", zap.String("leave_type", lt.LeaveType), zap.Int("leave_count", lt.LeaveCount))
	}
	logger.Info("Leave types seeded", zap.Int("seeded", len(defaultLeaveTypes)), zap.Int("total", len(types)))
	return nil
}

// SeedTeams creates the default teams. Existing names are kept.
func SeedTeams(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	repo := repositories.NewTeamRepository(db, logger)
	for _, name := range defaultTeams {
		if _, err := repo.Create(ctx, name); err != nil {
			return fmt.Errorf("failed to seed team %q: %w", name, err)
		}
	}
	logger.Info("Teams seeded", zap.Int("count", len(defaultTeams)))
	return nil
}

// SeedAdmin registers the admin account through the regular registration
// workflow, so it gets a generated employee id, a team and leave counts.
func SeedAdmin(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, password string, logger *zap.Logger) error {
	if password == "" {
		return ErrAdminPasswordRequired
	}

	userRepo := repositories.NewUserRepository(db, logger)
	exists, err := userRepo.ExistsByUsername(ctx, adminUsername)
	if err != nil {
		return err
	}
	if exists {
		logger.Info("Admin user already exists, skipping")
		return nil
	}

	teamRepo := repositories.NewTeamRepository(db, logger)
	team, err := teamRepo.Create(ctx, adminTeam)
	if err != nil {
		return fmt.Errorf("failed to ensure admin team: %w", err)
	}

	storage, err := filestorage.NewLocalFileStorage(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		return err
	}
	validate, err := customvalidator.New()
	if err != nil {
		return err
	}

	userService := services.NewUserService(
		userRepo,
		teamRepo,
		repositories.NewLeaveRepository(db, logger),
		repositories.NewImageRepository(db, logger),
		repositories.NewTxManager(db),
		storage,
		nil,
		empid.New(cfg.EmployeeID.Prefix, cfg.EmployeeID.Width),
		validate,
		cfg.Auth.BcryptCost,
		logger,
	)

	admin, err := userService.RegisterAdmin(ctx, dto.RegisterUserDTO{
		Username:  adminUsername,
		Password:  password,
		FirstName: adminFirstName,
		LastName:  adminLastName,
		Email:     adminEmail,
		TeamID:    team.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to register admin: %w", err)
	}

	logger.Info("Admin user created", zap.String("emp_id", admin.EmpID), zap.String("username", adminUsername))
	return nil
}
