package routes

import (
	"employee-management/internal/controllers"
	"employee-management/internal/services"
	"employee-management/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runUserRouter(secureGroup *echo.Group, userService services.UserServiceInterface, authMW *middleware.AuthMiddleware, logger *zap.Logger) {
	userCtrl := controllers.NewUserController(userService, logger)

	users := secureGroup.Group("/users")
	users.GET("/ids", userCtrl.ListEmployeeIDs)
	users.GET("/export", userCtrl.ExportEmployees, authMW.AdminOnly)
	users.GET("/:emp_id", userCtrl.GetProfile)
	users.PUT("/:emp_id", userCtrl.UpdateProfile, authMW.SelfOrAdmin("emp_id"))
	users.GET("/:emp_id/leave-counts", userCtrl.GetLeaveCounts)
}
