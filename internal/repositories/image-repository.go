package repositories

import (
	"context"
	"errors"
	"fmt"

	"employee-management/internal/entities"
	apperrors "employee-management/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ImageRepositoryInterface tracks uploaded images by their storage public id.
// Rows are only written inside a transaction together with the user row
// that references them.
type ImageRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, image *entities.Image) error
	DeleteByPublicIDInTx(ctx context.Context, tx pgx.Tx, empID, publicID string) (string, error)
}

type ImageRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewImageRepository(storage *pgxpool.Pool, logger *zap.Logger) ImageRepositoryInterface {
	return &ImageRepository{storage: storage, logger: logger}
}

// CreateInTx inserts image and fills in its generated id.
func (r *ImageRepository) CreateInTx(ctx context.Context, tx pgx.Tx, image *entities.Image) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO images (purpose, url, public_id, emp_id, original_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		image.Purpose, image.URL, image.PublicID, image.EmpID, image.OriginalName.Ptr(),
	).Scan(&image.ID, &image.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record image: %w", err)
	}
	return nil
}

// DeleteByPublicIDInTx removes the employee's association row for publicID
// and returns the URL it pointed to.
func (r *ImageRepository) DeleteByPublicIDInTx(ctx context.Context, tx pgx.Tx, empID, publicID string) (string, error) {
	var url string
	err := tx.QueryRow(ctx,
		"DELETE FROM images WHERE public_id = $1 AND emp_id = $2 RETURNING url",
		publicID, empID,
	).Scan(&url)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to delete image record: %w", err)
	}
	return url, nil
}
