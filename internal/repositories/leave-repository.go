package repositories

import (
	"context"
	"fmt"

	"employee-management/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// LeaveRepositoryInterface covers the leave type catalogue and the per
// employee balances copied from it at registration.
type LeaveRepositoryInterface interface {
	ListTypes(ctx context.Context) ([]entities.LeaveTypeCount, error)
	UpsertType(ctx context.Context, leaveType string, count int) error
	SeedForEmployeeInTx(ctx context.Context, tx pgx.Tx, empID string) (int64, error)
	ListForEmployee(ctx context.Context, empID string) ([]entities.UserLeaveCount, error)
}

type LeaveRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewLeaveRepository(storage *pgxpool.Pool, logger *zap.Logger) LeaveRepositoryInterface {
	return &LeaveRepository{storage: storage, logger: logger}
}

// ListTypes returns the catalogue in insertion order.
func (r *LeaveRepository) ListTypes(ctx context.Context) ([]entities.LeaveTypeCount, error) {
	rows, err := r.storage.Query(ctx, "SELECT id, leave_type, leave_count FROM leave_type_counts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	defer rows.Close()

	types := make([]entities.LeaveTypeCount, 0)
	for rows.Next() {
		var t entities.LeaveTypeCount
		if err := rows.Scan(&t.ID, &t.LeaveType, &t.LeaveCount); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// UpsertType creates a leave type or resets its default count.
func (r *LeaveRepository) UpsertType(ctx context.Context, leaveType string, count int) error {
	_, err := r.storage.Exec(ctx, `
		INSERT INTO leave_type_counts (leave_type, leave_count) VALUES ($1, $2)
		ON CONFLICT (leave_type) DO UPDATE SET leave_count = EXCLUDED.leave_count`,
		leaveType, count)
	if err != nil {
		return fmt.Errorf("failed to upsert leave type %q: %w", leaveType, err)
	}
	return nil
}

// SeedForEmployeeInTx copies every leave type with its default count to the
// employee and returns the number of rows created.
func (r *LeaveRepository) SeedForEmployeeInTx(ctx context.Context, tx pgx.Tx, empID string) (int64, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO user_leave_counts (emp_id, leave_type, leave_count)
		SELECT $1, leave_type, leave_count FROM leave_type_counts`, empID)
	if err != nil {
		return 0, fmt.Errorf("failed to seed leave counts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *LeaveRepository) ListForEmployee(ctx context.Context, empID string) ([]entities.UserLeaveCount, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT id, emp_id, leave_type, leave_count FROM user_leave_counts WHERE emp_id = $1 ORDER BY leave_type",
		empID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave counts: %w", err)
	}
	defer rows.Close()

	counts := make([]entities.UserLeaveCount, 0)
	for rows.Next() {
		var c entities.UserLeaveCount
		if err := rows.Scan(&c.ID, &c.EmpID, &c.LeaveType, &c.LeaveCount); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
