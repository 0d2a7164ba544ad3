package repositories

import (
	"context"
	"fmt"

	"employee-management/internal/entities"
	apperrors "employee-management/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// StickyNoteRepositoryInterface stores per employee notes.
type StickyNoteRepositoryInterface interface {
	Create(ctx context.Context, note *entities.StickyNote) (*entities.StickyNote, error)
	ListByEmpID(ctx context.Context, empID string) ([]entities.StickyNote, error)
	Delete(ctx context.Context, id uint64, empID string) error
}

type StickyNoteRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewStickyNoteRepository(storage *pgxpool.Pool, logger *zap.Logger) StickyNoteRepositoryInterface {
	return &StickyNoteRepository{storage: storage, logger: logger}
}

func (r *StickyNoteRepository) Create(ctx context.Context, note *entities.StickyNote) (*entities.StickyNote, error) {
	created := *note
	err := r.storage.QueryRow(ctx,
		"INSERT INTO sticky_notes (note, emp_id) VALUES ($1, $2) RETURNING id, created_at",
		note.Note, note.EmpID,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create sticky note: %w", err)
	}
	return &created, nil
}

// ListByEmpID returns the employee's notes, newest first.
func (r *StickyNoteRepository) ListByEmpID(ctx context.Context, empID string) ([]entities.StickyNote, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT id, note, emp_id, created_at FROM sticky_notes WHERE emp_id = $1 ORDER BY created_at DESC, id DESC",
		empID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sticky notes: %w", err)
	}
	defer rows.Close()

	notes := make([]entities.StickyNote, 0)
	for rows.Next() {
		var n entities.StickyNote
		if err := rows.Scan(&n.ID, &n.Note, &n.EmpID, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Delete removes the note only if it belongs to empID.
func (r *StickyNoteRepository) Delete(ctx context.Context, id uint64, empID string) error {
	tag, err := r.storage.Exec(ctx, "DELETE FROM sticky_notes WHERE id = $1 AND emp_id = $2", id, empID)
	if err != nil {
		return fmt.Errorf("failed to delete sticky note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
