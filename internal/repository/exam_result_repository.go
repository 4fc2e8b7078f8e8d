package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrOngoingExamExists is returned when an insert collides with the partial
// unique index on (user_id) WHERE NOT completed. The index turns the
// check-then-act race on "one ongoing attempt per user" into this
// deterministic error.
var ErrOngoingExamExists = errors.New("an ongoing exam already exists for this user")

const examResultColumns = `id, user_id, answers, exam_questions, total_score, total_questions,
	total_obtainable_marks, start_time, end_time, completed, created_at, updated_at`

// ExamResultRepository handles exam attempt data access. The answers map and
// the frozen question snapshot are stored as JSONB documents.
type ExamResultRepository struct {
	pool *pgxpool.Pool
}

// NewExamResultRepository creates a new ExamResultRepository.
func NewExamResultRepository(pool *pgxpool.Pool) *ExamResultRepository {
	return &ExamResultRepository{pool: pool}
}

func scanExamResult(row pgx.Row) (*model.ExamResult, error) {
	res := &model.ExamResult{}
	var answers, snapshot []byte
	err := row.Scan(
		&res.ID, &res.UserID, &answers, &snapshot, &res.TotalScore, &res.TotalQuestions,
		&res.TotalObtainableMarks, &res.StartTime, &res.EndTime, &res.Completed,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &res.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal(snapshot, &res.ExamQuestions); err != nil {
		return nil, fmt.Errorf("decode exam questions: %w", err)
	}
	return res, nil
}

// Create inserts a new attempt with its frozen question snapshot.
func (r *ExamResultRepository) Create(ctx context.Context, res *model.ExamResult) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	snapshot, err := json.Marshal(res.ExamQuestions)
	if err != nil {
		return fmt.Errorf("encode exam questions: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO exam_results (user_id, answers, exam_questions, total_score,
		    total_questions, total_obtainable_marks, start_time, completed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		res.UserID, answers, snapshot, res.TotalScore,
		res.TotalQuestions, res.TotalObtainableMarks, res.StartTime, res.Completed,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrOngoingExamExists
		}
		return err
	}
	return nil
}

// GetByID retrieves an attempt by ID.
func (r *ExamResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamResult, error) {
	return scanExamResult(r.pool.QueryRow(ctx,
		`SELECT `+examResultColumns+` FROM exam_results WHERE id = $1`, id))
}

// ListByUser retrieves all attempts for a user, newest first.
func (r *ExamResultRepository) ListByUser(ctx context.Context, userID int) ([]model.ExamResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examResultColumns+` FROM exam_results
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExamResults(rows)
}

// ListAll retrieves every attempt joined with its owner, newest first.
func (r *ExamResultRepository) ListAll(ctx context.Context) ([]model.ExamResultSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT er.id, er.user_id, er.answers, er.exam_questions, er.total_score,
		    er.total_questions, er.total_obtainable_marks, er.start_time, er.end_time,
		    er.completed, er.created_at, er.updated_at,
		    u.exam_number, u.full_name, u.email
		 FROM exam_results er
		 JOIN users u ON er.user_id = u.id
		 ORDER BY er.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.ExamResultSummary
	for rows.Next() {
		var s model.ExamResultSummary
		var answers, snapshot []byte
		if err := rows.Scan(
			&s.ID, &s.UserID, &answers, &snapshot, &s.TotalScore, &s.TotalQuestions,
			&s.TotalObtainableMarks, &s.StartTime, &s.EndTime, &s.Completed,
			&s.CreatedAt, &s.UpdatedAt,
			&s.ExamNumber, &s.FullName, &s.Email,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answers, &s.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		if err := json.Unmarshal(snapshot, &s.ExamQuestions); err != nil {
			return nil, fmt.Errorf("decode exam questions: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Complete records the terminal scoring pass in one durable write: the
// authoritative answers, the score, and the completed flag. The caller must
// not report a score to the client unless this returns nil.
func (r *ExamResultRepository) Complete(ctx context.Context, id uuid.UUID, answers map[string]string, totalScore, totalQuestions int, endTime time.Time) error {
	encoded, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_results
		 SET answers = $1, total_score = $2, total_questions = $3,
		     end_time = $4, completed = TRUE, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5 AND NOT completed`,
		encoded, totalScore, totalQuestions, endTime, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an attempt row entirely (cancel).
func (r *ExamResultRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exam_results WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteIncompleteByUser removes all non-completed attempts for a user and
// reports how many rows went away.
func (r *ExamResultRepository) DeleteIncompleteByUser(ctx context.Context, userID int) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM exam_results WHERE user_id = $1 AND NOT completed`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteAll removes every attempt (year-end archive wipe).
func (r *ExamResultRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exam_results`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func collectExamResults(rows pgx.Rows) ([]model.ExamResult, error) {
	var results []model.ExamResult
	for rows.Next() {
		res, err := scanExamResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}
