package controllers

import (
	"net/http"
	"strconv"

	"employee-management/internal/dto"
	"employee-management/internal/services"
	apperrors "employee-management/pkg/errors"
	"employee-management/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type StickyNoteController struct {
	noteService services.StickyNoteServiceInterface
	logger      *zap.Logger
}

func NewStickyNoteController(noteService services.StickyNoteServiceInterface, logger *zap.Logger) *StickyNoteController {
	return &StickyNoteController{noteService: noteService, logger: logger}
}

func (ctrl *StickyNoteController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

// CreateNote stores a note for emp_id from the body, or for the caller when
// it is omitted. Only admins may write notes for someone else.
func (ctrl *StickyNoteController) CreateNote(c echo.Context) error {
	claims, err := utils.GetClaimsFromContext(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.CreateStickyNoteDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid sticky note data"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	empID := payload.EmpID
	if empID == "" {
		empID = claims.EmpID
	}
	if !utils.CanActFor(claims, empID) {
		return ctrl.errorResponse(c, apperrors.New(apperrors.KindForbidden, "You are not allowed to access this resource", apperrors.ErrForbidden))
	}

	note, err := ctrl.noteService.CreateNote(c.Request().Context(), empID, payload.Note)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, note, "Sticky note created.", http.StatusCreated)
}

func (ctrl *StickyNoteController) GetNotes(c echo.Context) error {
	notes, err := ctrl.noteService.GetNotes(c.Request().Context(), c.Param("emp_id"))
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, notes, "Successfully", http.StatusOK)
}

func (ctrl *StickyNoteController) DeleteNote(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ctrl.errorResponse(c, apperrors.NewValidationError("Validation failed",
			[]utils.FieldError{utils.NewFieldError("id", "numeric", "")}))
	}

	if err := ctrl.noteService.DeleteNote(c.Request().Context(), id, c.Param("emp_id")); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Sticky note deleted.", http.StatusOK)
}
