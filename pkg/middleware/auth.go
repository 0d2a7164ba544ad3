package middleware

import (
	"context"
	"net/http"
	"strings"

	"employee-management/internal/dto"
	apperrors "employee-management/pkg/errors"
	"employee-management/pkg/service"
	"employee-management/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionChecker confirms that a verified token is still the one persisted
// for the employee, i.e. the session was not ended by logout.
type SessionChecker interface {
	IsSessionActive(ctx context.Context, empID, token string) (bool, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	sessions   SessionChecker
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, sessions SessionChecker, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		sessions:   sessions,
		logger:     logger,
	}
}

func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusUnauthorized, "Authorization header is missing", apperrors.ErrEmptyAuthHeader, nil), m.logger)
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusUnauthorized, "Invalid authorization header", apperrors.ErrInvalidAuthHeader, nil), m.logger)
		}
		tokenString := parts[1]

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			return utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusUnauthorized, "Invalid or expired token", err, nil), m.logger)
		}

		ctx := c.Request().Context()
		active, err := m.sessions.IsSessionActive(ctx, claims.UserID, tokenString)
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}
		if !active {
			return utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusUnauthorized, "Session has ended, please log in again", apperrors.ErrSessionRevoked,
				map[string]interface{}{"emp_id": claims.UserID}), m.logger)
		}

		userClaims := &dto.UserClaims{EmpID: claims.UserID, Name: claims.Name, Role: claims.Role}
		c.SetRequest(c.Request().WithContext(utils.ContextWithClaims(ctx, userClaims)))

		m.logger.Debug("Authenticated request", zap.String("emp_id", claims.UserID))
		return next(c)
	}
}

// SelfOrAdmin allows the request only when the path parameter param names
// the caller, or the caller is an admin. It must run after Auth.
func (m *AuthMiddleware) SelfOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := utils.GetClaimsFromContext(c.Request().Context())
			if err != nil {
				return utils.ErrorResponse(c, err, m.logger)
			}
			if !utils.CanActFor(claims, c.Param(param)) {
				return utils.ErrorResponse(c, apperrors.New(apperrors.KindForbidden, "You are not allowed to access this resource", apperrors.ErrForbidden), m.logger)
			}
			return next(c)
		}
	}
}

func (m *AuthMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := utils.GetClaimsFromContext(c.Request().Context())
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}
		if !claims.IsAdmin() {
			return utils.ErrorResponse(c, apperrors.New(apperrors.KindForbidden, "Admin access required", apperrors.ErrForbidden), m.logger)
		}
		return next(c)
	}
}
