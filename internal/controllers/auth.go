package controllers

import (
	"net/http"

	"employee-management/internal/dto"
	"employee-management/internal/services"
	apperrors "employee-management/pkg/errors"
	"employee-management/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthController struct {
	authService services.AuthServiceInterface
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, logger *zap.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

// bindAndValidate binds the JSON body into payload and runs struct validation.
func (ctrl *AuthController) bindAndValidate(c echo.Context, payload interface{}, what string) error {
	if err := c.Bind(payload); err != nil {
		ctrl.logger.Warn("Failed to bind request", zap.String("request", what), zap.Error(err))
		return apperrors.NewBadRequestError("Invalid " + what + " data")
	}
	return c.Validate(payload)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := ctrl.bindAndValidate(c, &payload, "login"); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Login successful.", http.StatusOK)
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	if err := ctrl.authService.Logout(c.Request().Context(), c.Param("id")); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Logged out successfully.", http.StatusOK)
}

func (ctrl *AuthController) SendOTP(c echo.Context) error {
	var payload dto.SendOTPDTO
	if err := ctrl.bindAndValidate(c, &payload, "OTP request"); err != nil {
		return ctrl.errorResponse(c, err)
	}

	if err := ctrl.authService.SendOTP(c.Request().Context(), payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "OTP sent successfully, please check your email.", http.StatusOK)
}

func (ctrl *AuthController) VerifyOTP(c echo.Context) error {
	var payload dto.VerifyOTPDTO
	if err := ctrl.bindAndValidate(c, &payload, "OTP verification"); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.VerifyOTP(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "OTP verified successfully.", http.StatusOK)
}

func (ctrl *AuthController) UpdatePassword(c echo.Context) error {
	var payload dto.UpdatePasswordDTO
	if err := ctrl.bindAndValidate(c, &payload, "password"); err != nil {
		return ctrl.errorResponse(c, err)
	}

	if err := ctrl.authService.UpdatePassword(c.Request().Context(), payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Password updated successfully.", http.StatusOK)
}
