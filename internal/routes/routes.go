package routes

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"employee-management/internal/listeners"
	"employee-management/internal/repositories"
	"employee-management/internal/services"
	"employee-management/pkg/config"
	"employee-management/pkg/customvalidator"
	"employee-management/pkg/empid"
	"employee-management/pkg/eventbus"
	"employee-management/pkg/filestorage"
	"employee-management/pkg/mailer"
	"employee-management/pkg/middleware"
	"employee-management/pkg/service"
)

type Loggers struct {
	Main *zap.Logger
	Auth *zap.Logger
	User *zap.Logger
}

// Services are the handlers' collaborators. Auth also answers session checks
// for the bearer middleware.
type Services struct {
	Auth       services.AuthServiceInterface
	User       services.UserServiceInterface
	StickyNote services.StickyNoteServiceInterface
}

// InitRouter builds repositories and services over the given connections and
// mounts every route under /api.
func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, loggers *Loggers, cfg *config.Config) error {
	loggers.Main.Info("InitRouter: building routes")

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("failed to create file storage: %w", err)
	}
	txManager := repositories.NewTxManager(dbConn)

	userRepo := repositories.NewUserRepository(dbConn, loggers.User)
	teamRepo := repositories.NewTeamRepository(dbConn, loggers.User)
	leaveRepo := repositories.NewLeaveRepository(dbConn, loggers.User)
	imageRepo := repositories.NewImageRepository(dbConn, loggers.User)
	noteRepo := repositories.NewStickyNoteRepository(dbConn, loggers.Main)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	validate, err := customvalidator.New()
	if err != nil {
		return err
	}

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP, loggers.Main)
	bus := eventbus.New(loggers.Main)
	listeners.NewNotificationListener(smtpMailer, loggers.Main).Register(bus)

	svcs := &Services{
		Auth: services.NewAuthService(userRepo, cacheRepo, jwtSvc, smtpMailer, bus, loggers.Auth, &cfg.Auth),
		User: services.NewUserService(
			userRepo, teamRepo, leaveRepo, imageRepo, txManager, fileStorage, bus,
			empid.New(cfg.EmployeeID.Prefix, cfg.EmployeeID.Width),
			validate, cfg.Auth.BcryptCost, loggers.User,
		),
		StickyNote: services.NewStickyNoteService(noteRepo, userRepo, loggers.Main),
	}

	Mount(e, svcs, jwtSvc, loggers)
	loggers.Main.Info("InitRouter: routes ready")
	return nil
}

// Mount registers the route table on e.
func Mount(e *echo.Echo, svcs *Services, jwtSvc service.JWTService, loggers *Loggers) {
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, svcs.Auth, loggers.Auth)
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, svcs, authMW, loggers)
	runUserRouter(secureGroup, svcs.User, authMW, loggers.User)
	runStickyNoteRouter(secureGroup, svcs.StickyNote, authMW, loggers.Main)
}
