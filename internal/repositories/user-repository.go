package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"employee-management/internal/entities"
	apperrors "employee-management/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	userSelectFields = `u.emp_id, u.username, u.password, u.first_name, u.last_name, u.email,
		u.gender, u.profile_picture, u.blood_group, u.mobile_number, u.emergency_contact_number,
		u.emergency_contact_person_info, u.address, to_char(u.dob, 'YYYY-MM-DD'), u.designation,
		u.designation_type, to_char(u.joining_date, 'YYYY-MM-DD'), u.experience, u.completed_projects,
		u.performance, u.teams, u.client_report, u.role, u.jwt_token, u.otp,
		(SELECT i.public_id FROM images i WHERE i.emp_id = u.emp_id AND i.purpose = 'profile'
			ORDER BY i.created_at DESC, i.id DESC LIMIT 1),
		u.created_at, u.updated_at`

	// Serializes employee id assignment across concurrent registrations.
	employeeIDLockKey int64 = 0x454d504944

	uniqueViolation = "23505"
)

// UserRepositoryInterface is the persistence boundary for employees. Lookups
// return apperrors.ErrNotFound when no row matches; unique violations come
// back as Conflict errors naming the duplicated field.
type UserRepositoryInterface interface {
	FindByEmpID(ctx context.Context, empID string) (*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Exists(ctx context.Context, empID string) (bool, error)
	ListEmployeeIDs(ctx context.Context) ([]entities.EmployeeRef, error)

	LockEmployeeIDsInTx(ctx context.Context, tx pgx.Tx) error
	LastEmployeeIDInTx(ctx context.Context, tx pgx.Tx, prefix string) (string, error)
	CreateInTx(ctx context.Context, tx pgx.Tx, user *entities.User) (*entities.User, error)
	UpdateProfileInTx(ctx context.Context, tx pgx.Tx, query *UpdateQuery) error
	UpdateProfilePictureInTx(ctx context.Context, tx pgx.Tx, empID, url string) error

	UpdateToken(ctx context.Context, empID, token string) error
	GetToken(ctx context.Context, empID string) (string, error)
	SetOTPByEmail(ctx context.Context, email string, otp int) (bool, error)
	ConsumeOTP(ctx context.Context, email string, otp int) (bool, error)
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
}

// UserRepository is the PostgreSQL implementation of UserRepositoryInterface.
type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.EmpID, &u.Username, &u.Password, &u.FirstName, &u.LastName, &u.Email,
		&u.Gender, &u.ProfilePicture, &u.BloodGroup, &u.MobileNumber, &u.EmergencyContactNumber,
		&u.EmergencyContactPersonInfo, &u.Address, &u.Dob, &u.Designation,
		&u.DesignationType, &u.JoiningDate, &u.Experience, &u.CompletedProjects,
		&u.Performance, &u.Teams, &u.ClientReport, &u.Role, &u.JWTToken, &u.OTP,
		&u.ProfilePublicID,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) findOne(ctx context.Context, q querier, column string, value interface{}) (*entities.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users u WHERE u.%s = $1 LIMIT 1", userSelectFields, column)
	return scanUser(q.QueryRow(ctx, query, value))
}

func (r *UserRepository) exists(ctx context.Context, column string, value interface{}) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM users WHERE %s = $1)", column)
	if err := r.storage.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check users.%s: %w", column, err)
	}
	return exists, nil
}

// FindByEmpID loads an employee with the public id of their latest image.
func (r *UserRepository) FindByEmpID(ctx context.Context, empID string) (*entities.User, error) {
	return r.findOne(ctx, r.storage, "emp_id", empID)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, r.storage, "username", username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, r.storage, "email", strings.ToLower(email))
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", strings.ToLower(email))
}

func (r *UserRepository) Exists(ctx context.Context, empID string) (bool, error) {
	return r.exists(ctx, "emp_id", empID)
}

func (r *UserRepository) ListEmployeeIDs(ctx context.Context) ([]entities.EmployeeRef, error) {
	query, args, err := sq.Select("emp_id", "first_name || ' ' || last_name AS name").
		From("users").
		OrderBy("emp_id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build employee id query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee ids: %w", err)
	}
	defer rows.Close()

	refs := make([]entities.EmployeeRef, 0)
	for rows.Next() {
		var ref entities.EmployeeRef
		if err := rows.Scan(&ref.EmpID, &ref.Name); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// LockEmployeeIDsInTx takes a transaction scoped advisory lock so that two
// registrations cannot read the same last id. It is released on commit or
// rollback.
func (r *UserRepository) LockEmployeeIDsInTx(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", employeeIDLockKey); err != nil {
		return fmt.Errorf("failed to lock employee id sequence: %w", err)
	}
	return nil
}

// LastEmployeeIDInTx returns the greatest employee id with the given prefix,
// or "" when there is none.
func (r *UserRepository) LastEmployeeIDInTx(ctx context.Context, tx pgx.Tx, prefix string) (string, error) {
	var empID string
	err := tx.QueryRow(ctx,
		"SELECT emp_id FROM users WHERE emp_id LIKE $1 || '%' ORDER BY emp_id DESC LIMIT 1",
		prefix,
	).Scan(&empID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read last employee id: %w", err)
	}
	return empID, nil
}

// CreateInTx inserts u and returns the stored row. The email is lowercased.
func (r *UserRepository) CreateInTx(ctx context.Context, tx pgx.Tx, u *entities.User) (*entities.User, error) {
	query := `
		INSERT INTO users (
			emp_id, username, password, first_name, last_name, email, gender, profile_picture,
			blood_group, mobile_number, emergency_contact_number, emergency_contact_person_info,
			address, dob, designation, designation_type, joining_date, experience,
			completed_projects, performance, teams, client_report, role
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`

	_, err := tx.Exec(ctx, query,
		u.EmpID, u.Username, u.Password, u.FirstName, u.LastName, strings.ToLower(u.Email),
		u.Gender.Ptr(), u.ProfilePicture.Ptr(),
		u.BloodGroup.Ptr(), u.MobileNumber.Ptr(), u.EmergencyContactNumber.Ptr(), u.EmergencyContactPersonInfo.Ptr(),
		u.Address.Ptr(), u.Dob.Ptr(), u.Designation.Ptr(), u.DesignationType.Ptr(), u.JoiningDate.Ptr(), u.Experience.Ptr(),
		u.CompletedProjects.Ptr(), u.Performance.Ptr(), u.Teams.Ptr(), u.ClientReport.Ptr(), u.Role,
	)
	if err != nil {
		return nil, mapUserWriteError(err)
	}

	return r.findOne(ctx, tx, "emp_id", u.EmpID)
}

// UpdateProfileInTx executes a statement built by UpdateBuilder and returns
// ErrNotFound when it matched no employee.
func (r *UserRepository) UpdateProfileInTx(ctx context.Context, tx pgx.Tx, q *UpdateQuery) error {
	r.logger.Debug("Executing profile update", zap.String("query", q.SQL))
	tag, err := tx.Exec(ctx, q.SQL, q.Args...)
	if err != nil {
		return mapUserWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateProfilePictureInTx sets the picture URL; an empty url clears it.
func (r *UserRepository) UpdateProfilePictureInTx(ctx context.Context, tx pgx.Tx, empID, url string) error {
	var value *string
	if url != "" {
		value = &url
	}
	tag, err := tx.Exec(ctx, "UPDATE users SET profile_picture = $1, updated_at = NOW() WHERE emp_id = $2", value, empID)
	if err != nil {
		return fmt.Errorf("failed to update profile picture: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateToken persists the session token; an empty token clears it.
func (r *UserRepository) UpdateToken(ctx context.Context, empID, token string) error {
	var value *string
	if token != "" {
		value = &token
	}
	if _, err := r.storage.Exec(ctx, "UPDATE users SET jwt_token = $1 WHERE emp_id = $2", value, empID); err != nil {
		return fmt.Errorf("failed to update session token: %w", err)
	}
	return nil
}

// GetToken returns the persisted session token, "" when signed out.
func (r *UserRepository) GetToken(ctx context.Context, empID string) (string, error) {
	var token *string
	err := r.storage.QueryRow(ctx, "SELECT jwt_token FROM users WHERE emp_id = $1", empID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	if token == nil {
		return "", nil
	}
	return *token, nil
}

// SetOTPByEmail reports false when no user has the email.
func (r *UserRepository) SetOTPByEmail(ctx context.Context, email string, otp int) (bool, error) {
	tag, err := r.storage.Exec(ctx, "UPDATE users SET otp = $1 WHERE email = $2", otp, strings.ToLower(email))
	if err != nil {
		return false, fmt.Errorf("failed to store otp: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ConsumeOTP clears the stored code if it equals otp and reports whether it did.
func (r *UserRepository) ConsumeOTP(ctx context.Context, email string, otp int) (bool, error) {
	tag, err := r.storage.Exec(ctx,
		"UPDATE users SET otp = NULL WHERE email = $1 AND otp = $2",
		strings.ToLower(email), otp,
	)
	if err != nil {
		return false, fmt.Errorf("failed to verify otp: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE users SET password = $1, updated_at = NOW() WHERE email = $2",
		passwordHash, strings.ToLower(email),
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func mapUserWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return apperrors.NewConflictError("User name already exists, please choose another user name.", err).
				WithDetails(map[string]bool{"is_user_name_exists": true})
		case strings.Contains(pgErr.ConstraintName, "email"):
			return apperrors.NewConflictError("User with this email already exists.", err)
		default:
			return apperrors.NewConflictError("Employee already exists.", err)
		}
	}
	return err
}
