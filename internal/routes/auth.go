package routes

import (
	"employee-management/internal/controllers"
	"employee-management/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runAuthRouter(api *echo.Group, svcs *Services, authMW *middleware.AuthMiddleware, loggers *Loggers) {
	authCtrl := controllers.NewAuthController(svcs.Auth, loggers.Auth)
	registerCtrl := controllers.NewUserController(svcs.User, loggers.User)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", registerCtrl.Register)
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/logout/:id", authCtrl.Logout, authMW.Auth, authMW.SelfOrAdmin("id"))
		authGroup.POST("/otp/send", authCtrl.SendOTP)
		authGroup.POST("/otp/verify", authCtrl.VerifyOTP)
		authGroup.POST("/password", authCtrl.UpdatePassword)
	}
}
