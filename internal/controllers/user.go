package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"employee-management/internal/dto"
	"employee-management/internal/services"
	apperrors "employee-management/pkg/errors"
	"employee-management/pkg/utils"
	"employee-management/pkg/validation"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	profileUploadContext = "profile"
	registerImageField   = "image"
	profileImageField    = "file"
	maxMultipartMemory   = 8 << 20
)

type UserController struct {
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewUserController(userService services.UserServiceInterface, logger *zap.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

func (ctrl *UserController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *UserController) Register(c echo.Context) error {
	var payload dto.RegisterUserDTO
	if err := c.Bind(&payload); err != nil {
		ctrl.logger.Warn("Register: failed to bind request", zap.Error(err))
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid registration data"))
	}
	if raw := strings.TrimSpace(c.FormValue("completed_projects")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return ctrl.errorResponse(c, apperrors.NewValidationError("Validation failed",
				[]utils.FieldError{utils.NewFieldError("completed_projects", "numeric", "")}))
		}
		payload.CompletedProjects = &n
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	image, closeFile, err := ctrl.optionalImage(c, registerImageField)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	defer closeFile()

	user, err := ctrl.userService.Register(c.Request().Context(), payload, image)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, user, "User registered successfully.", http.StatusCreated)
}

func (ctrl *UserController) GetProfile(c echo.Context) error {
	user, err := ctrl.userService.GetProfile(c.Request().Context(), c.Param("emp_id"))
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, user, "Successfully", http.StatusOK)
}

// UpdateProfile accepts either a JSON object of columns or a multipart form
// with the same fields plus an optional "file" and "public_id".
func (ctrl *UserController) UpdateProfile(c echo.Context) error {
	empID := c.Param("emp_id")
	var (
		payload   dto.UpdateProfileDTO
		image     *dto.FileUpload
		closeFile = func() {}
	)

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid multipart form"))
		}
		payload.Fields = make(map[string]interface{}, len(form.Value))
		for key, values := range form.Value {
			if len(values) > 0 {
				payload.Fields[key] = values[0]
			}
		}
		if image, closeFile, err = ctrl.optionalImage(c, profileImageField); err != nil {
			return ctrl.errorResponse(c, err)
		}
	} else {
		payload.Fields = map[string]interface{}{}
		if err := (&echo.DefaultBinder{}).BindBody(c, &payload.Fields); err != nil {
			ctrl.logger.Warn("UpdateProfile: failed to bind request", zap.String("emp_id", empID), zap.Error(err))
			return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid profile data"))
		}
	}
	defer closeFile()

	if raw, ok := payload.Fields["public_id"].(string); ok {
		payload.PublicID = raw
	}

	user, err := ctrl.userService.UpdateProfile(c.Request().Context(), empID, payload, image)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, user, "Profile updated successfully.", http.StatusOK)
}

func (ctrl *UserController) ListEmployeeIDs(c echo.Context) error {
	ids, err := ctrl.userService.ListEmployeeIDs(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, ids, "Successfully", http.StatusOK)
}

func (ctrl *UserController) GetLeaveCounts(c echo.Context) error {
	counts, err := ctrl.userService.GetLeaveCounts(c.Request().Context(), c.Param("emp_id"))
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, counts, "Successfully", http.StatusOK)
}

var employeeExportHeaders = []string{"Employee ID", "Name"}

func (ctrl *UserController) ExportEmployees(c echo.Context) error {
	ids, err := ctrl.userService.ListEmployeeIDs(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	if err := ctrl.respondWithXLSX(c, ids); err != nil {
		ctrl.logger.Error("Failed to write employee export", zap.Error(err))
		return err
	}
	return nil
}

func (ctrl *UserController) respondWithXLSX(c echo.Context, rows []dto.EmployeeIDDTO) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Employees"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &employeeExportHeaders); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{row.EmpID, row.Name}); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 16); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 32); err != nil {
		return err
	}

	fileName := fmt.Sprintf("employees_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response().Writer)
}

// optionalImage opens and validates the named multipart file. A missing file
// is not an error. The returned close func is always safe to call.
func (ctrl *UserController) optionalImage(c echo.Context, field string) (*dto.FileUpload, func(), error) {
	noop := func() {}
	if err := c.Request().ParseMultipartForm(maxMultipartMemory); err != nil && err != http.ErrNotMultipart {
		return nil, noop, apperrors.NewBadRequestError("Invalid multipart form")
	}

	fileHeader, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, noop, nil
		}
		return nil, noop, apperrors.NewBadRequestError("Invalid file upload")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, noop, apperrors.NewInternalError("Failed to read uploaded file", err)
	}
	closeFile := func() { _ = src.Close() }

	if err := validation.ValidateFile(src, fileHeader.Size, profileUploadContext); err != nil {
		closeFile()
		return nil, noop, apperrors.NewValidationError(err.Error(),
			[]utils.FieldError{utils.NewFieldError(field, "file", "")})
	}

	return &dto.FileUpload{Reader: src, Filename: fileHeader.Filename, Size: fileHeader.Size}, closeFile, nil
}
