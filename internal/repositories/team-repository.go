package repositories

import (
	"context"
	"errors"
	"fmt"

	"employee-management/internal/entities"
	apperrors "employee-management/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TeamRepositoryInterface manages teams and employee membership.
type TeamRepositoryInterface interface {
	Exists(ctx context.Context, teamID uint64) (bool, error)
	Create(ctx context.Context, name string) (*entities.Team, error)
	AddMemberInTx(ctx context.Context, tx pgx.Tx, empID string, teamID uint64) error
}

type TeamRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTeamRepository(storage *pgxpool.Pool, logger *zap.Logger) TeamRepositoryInterface {
	return &TeamRepository{storage: storage, logger: logger}
}

func (r *TeamRepository) Exists(ctx context.Context, teamID uint64) (bool, error) {
	var exists bool
	if err := r.storage.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1)", teamID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check team: %w", err)
	}
	return exists, nil
}

// Create inserts a team, returning the existing one when the name is taken.
func (r *TeamRepository) Create(ctx context.Context, name string) (*entities.Team, error) {
	var t entities.Team
	err := r.storage.QueryRow(ctx, `
		INSERT INTO teams (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`, name).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create team %q: %w", name, err)
	}
	return &t, nil
}

// AddMemberInTx links an employee to a team. A missing team surfaces as a
// NotFound error through the foreign key.
func (r *TeamRepository) AddMemberInTx(ctx context.Context, tx pgx.Tx, empID string, teamID uint64) error {
	_, err := tx.Exec(ctx, "INSERT INTO user_teams (emp_id, team_id) VALUES ($1, $2)", empID, teamID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.NewNotFoundError("No team with this name exists.")
		}
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}
