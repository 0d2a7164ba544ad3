package utils

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "employee-management/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

const internalErrorMessage = "Internal server error"

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HTTPResponse{Status: true, Body: body, Message: message})
}

// ErrorResponse is the single place where errors become HTTP envelopes.
// Internal causes are logged and never sent to the client.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		logger.Warn("Validation failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		return c.JSON(http.StatusBadRequest, &HTTPResponse{
			Status:  false,
			Message: "Validation failed",
			Body:    ValidationFieldErrors(validationErrors),
		})
	}

	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		fields := []zap.Field{
			zap.Int("code", httpErr.Code),
			zap.String("kind", string(httpErr.Kind)),
			zap.String("message", httpErr.Message),
		}
		if httpErr.Err != nil {
			fields = append(fields, zap.Error(httpErr.Err))
		}
		if httpErr.Context != nil {
			fields = append(fields, zap.Any("context", httpErr.Context))
		}

		message := httpErr.Message
		if httpErr.Kind == apperrors.KindInternal {
			logger.Error("HTTP Error", fields...)
			if message == "" {
				message = internalErrorMessage
			}
		} else {
			logger.Warn("HTTP Error", fields...)
		}

		return c.JSON(httpErr.Code, &HTTPResponse{
			Status:  false,
			Message: message,
			Body:    httpErr.Details,
		})
	}

	kind := apperrors.KindOf(err)
	if kind != apperrors.KindInternal {
		logger.Warn("Request rejected", zap.String("kind", string(kind)), zap.Error(err))
		return c.JSON(kind.Status(), &HTTPResponse{Status: false, Message: err.Error()})
	}

	logger.Error("Unexpected Error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, &HTTPResponse{
		Status:  false,
		Message: internalErrorMessage,
	})
}

func ValidationFieldErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		out = append(out, NewFieldError(e.Field(), e.Tag(), e.Param()))
	}
	return out
}

func NewFieldError(field, tag, param string) FieldError {
	return FieldError{
		Field:   field,
		Tag:     tag,
		Param:   param,
		Message: fieldErrorMessage(field, tag, param),
	}
}

func fieldErrorMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, param)
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "datetime":
		return fmt.Sprintf("%s must be a date in the format %s", field, param)
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "type":
		return fmt.Sprintf("%s has the wrong type", field)
	case "unknown":
		return fmt.Sprintf("%s cannot be updated", field)
	default:
		return fmt.Sprintf("%s failed the '%s' check", field, tag)
	}
}
