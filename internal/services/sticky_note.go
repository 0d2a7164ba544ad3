package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"employee-management/internal/dto"
	"employee-management/internal/entities"
	"employee-management/internal/repositories"
	apperrors "employee-management/pkg/errors"

	"go.uber.org/zap"
)

type StickyNoteServiceInterface interface {
	CreateNote(ctx context.Context, empID, note string) (*dto.StickyNoteDTO, error)
	GetNotes(ctx context.Context, empID string) ([]dto.StickyNoteDTO, error)
	DeleteNote(ctx context.Context, id uint64, empID string) error
}

type StickyNoteService struct {
	noteRepo repositories.StickyNoteRepositoryInterface
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewStickyNoteService(
	noteRepo repositories.StickyNoteRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) StickyNoteServiceInterface {
	return &StickyNoteService{noteRepo: noteRepo, userRepo: userRepo, logger: logger}
}

func (s *StickyNoteService) CreateNote(ctx context.Context, empID, note string) (*dto.StickyNoteDTO, error) {
	exists, err := s.userRepo.Exists(ctx, empID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFoundError("User not found.")
	}

	created, err := s.noteRepo.Create(ctx, &entities.StickyNote{Note: strings.TrimSpace(note), EmpID: empID})
	if err != nil {
		s.logger.Error("Failed to create sticky note", zap.String("emp_id", empID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Sticky note created", zap.String("emp_id", empID), zap.Uint64("id", created.ID))
	return stickyNoteEntityToDTO(created), nil
}

func (s *StickyNoteService) GetNotes(ctx context.Context, empID string) ([]dto.StickyNoteDTO, error) {
	notes, err := s.noteRepo.ListByEmpID(ctx, empID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StickyNoteDTO, 0, len(notes))
	for i := range notes {
		out = append(out, *stickyNoteEntityToDTO(&notes[i]))
	}
	return out, nil
}

// DeleteNote removes a note owned by empID; another employee's note is
// reported as not found.
func (s *StickyNoteService) DeleteNote(ctx context.Context, id uint64, empID string) error {
	if err := s.noteRepo.Delete(ctx, id, empID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("stickynotes not found, wrong input.")
		}
		return err
	}
	s.logger.Info("Sticky note deleted", zap.String("emp_id", empID), zap.Uint64("id", id))
	return nil
}

func stickyNoteEntityToDTO(n *entities.StickyNote) *dto.StickyNoteDTO {
	return &dto.StickyNoteDTO{
		ID:        n.ID,
		Note:      n.Note,
		EmpID:     n.EmpID,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}
