package routes

import (
	"employee-management/internal/controllers"
	"employee-management/internal/services"
	"employee-management/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runStickyNoteRouter(secureGroup *echo.Group, noteService services.StickyNoteServiceInterface, authMW *middleware.AuthMiddleware, logger *zap.Logger) {
	noteCtrl := controllers.NewStickyNoteController(noteService, logger)

	notes := secureGroup.Group("/sticky-notes")
	notes.POST("", noteCtrl.CreateNote)
	notes.GET("/:emp_id", noteCtrl.GetNotes, authMW.SelfOrAdmin("emp_id"))
	notes.DELETE("/:id/:emp_id", noteCtrl.DeleteNote, authMW.SelfOrAdmin("emp_id"))
}
