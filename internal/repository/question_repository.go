package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question-bank data access. Options are stored
// as a JSONB array to keep display order.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	var options []byte
	err := row.Scan(&q.ID, &q.QuestionText, &options, &q.CorrectAnswer, &q.Subject, &q.Marks, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return q, nil
}

// GetByID retrieves a question by ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT id, question_text, options, correct_answer, subject, marks, created_at
		 FROM questions WHERE id = $1`, id))
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (question_text, options, correct_answer, subject, marks)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		q.QuestionText, options, q.CorrectAnswer, q.Subject, q.Marks,
	).Scan(&q.ID, &q.CreatedAt)
}

// Update rewrites an existing question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET question_text = $1, options = $2, correct_answer = $3, subject = $4, marks = $5
		 WHERE id = $6`,
		q.QuestionText, options, q.CorrectAnswer, q.Subject, q.Marks, q.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a question by ID.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListPaginated retrieves questions newest first.
func (r *QuestionRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Question, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, question_text, options, correct_answer, subject, marks, created_at
		 FROM questions ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, *q)
	}
	return questions, total, rows.Err()
}

// ListBySubject retrieves every question grouped per subject, subjects sorted.
func (r *QuestionRepository) ListBySubject(ctx context.Context) ([]model.SubjectGroup, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_text, options, correct_answer, subject, marks, created_at
		 FROM questions ORDER BY subject ASC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.SubjectGroup
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		if len(groups) == 0 || groups[len(groups)-1].Subject != q.Subject {
			groups = append(groups, model.SubjectGroup{Subject: q.Subject})
		}
		last := &groups[len(groups)-1]
		last.Questions = append(last.Questions, *q)
	}
	return groups, rows.Err()
}

// Subjects returns the distinct subject tags in the bank.
func (r *QuestionRepository) Subjects(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT subject FROM questions ORDER BY subject ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// SampleBySubject draws a uniform random subset (without replacement) of up
// to n questions tagged with the given subject.
func (r *QuestionRepository) SampleBySubject(ctx context.Context, subject string, n int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_text, options, correct_answer, subject, marks, created_at
		 FROM questions WHERE subject = $1 ORDER BY random() LIMIT $2`, subject, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// SampleGlobal draws a uniform random subset of up to n questions across all
// subjects.
func (r *QuestionRepository) SampleGlobal(ctx context.Context, n int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_text, options, correct_answer, subject, marks, created_at
		 FROM questions ORDER BY random() LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}
