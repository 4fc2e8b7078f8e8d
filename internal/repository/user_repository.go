package repository

import (
	"context"
	"errors"
	"time"

	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Duplicate-key errors surfaced from the unique indexes on users.
var (
	ErrDuplicateEmail      = errors.New("a user with this email already exists")
	ErrDuplicateExamNumber = errors.New("a user with this exam number already exists")
)

const userColumns = `id, exam_number, surname, first_name, full_name, email, phone_number,
	date_of_birth, sex, state_of_origin, nationality, role, password_hash,
	exam_group, exam_datetime, created_at, updated_at`

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.ExamNumber, &u.Surname, &u.FirstName, &u.FullName, &u.Email, &u.PhoneNumber,
		&u.DateOfBirth, &u.Sex, &u.StateOfOrigin, &u.Nationality, &u.Role, &u.PasswordHash,
		&u.ExamGroup, &u.ExamDateTime, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by their unique email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByExamNumber retrieves a student by their unique exam number.
func (r *UserRepository) GetByExamNumber(ctx context.Context, examNumber string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE exam_number = $1`, examNumber))
}

// EmailExists reports whether a user with the given email is registered.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// ExamNumberExists reports whether an exam number is already allocated.
func (r *UserRepository) ExamNumberExists(ctx context.Context, examNumber string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE exam_number = $1)`, examNumber).Scan(&exists)
	return exists, err
}

// CountStudents returns the number of registered students. Group assignment
// reads this at save time; see the registration service for the race caveat.
func (r *UserRepository) CountStudents(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, model.RoleStudent).Scan(&count)
	return count, err
}

// Create inserts a new user. Unique-index violations are mapped to the
// duplicate sentinels above so callers can retry or report precisely.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (exam_number, surname, first_name, full_name, email, phone_number,
		    date_of_birth, sex, state_of_origin, nationality, role, password_hash,
		    exam_group, exam_datetime)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, created_at, updated_at`,
		u.ExamNumber, u.Surname, u.FirstName, u.FullName, u.Email, u.PhoneNumber,
		u.DateOfBirth, u.Sex, u.StateOfOrigin, u.Nationality, u.Role, u.PasswordHash,
		u.ExamGroup, u.ExamDateTime,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_exam_number_key" {
				return ErrDuplicateExamNumber
			}
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// ListStudents retrieves students with pagination, newest first.
func (r *UserRepository) ListStudents(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, model.RoleStudent).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		model.RoleStudent, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// ListAllStudents retrieves every student without pagination (archive export).
func (r *UserRepository) ListAllStudents(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at ASC`,
		model.RoleStudent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdatePasswordHash updates a user's password hash.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id)
	return err
}

// UpdateSchedule rewrites a student's exam group and date-time. Used only by
// the explicit administrative recompute.
func (r *UserRepository) UpdateSchedule(ctx context.Context, id int, group int, examDateTime time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET exam_group = $1, exam_datetime = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3 AND role = $4`,
		group, examDateTime, id, model.RoleStudent)
	return err
}

// DeleteStudents removes all student users (year-end archive wipe).
func (r *UserRepository) DeleteStudents(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE role = $1`, model.RoleStudent)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
