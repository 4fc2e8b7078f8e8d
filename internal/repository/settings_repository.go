package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settingsColumns = `id, exam_duration_minutes, exam_instructions, exam_slip_instructions,
	exam_venue, exam_start_date, exam_start_time, exam_group_size,
	exam_group_interval_hours, exam_report_next_steps, total_exam_questions,
	questions_per_subject, created_at, updated_at`

// SettingsRepository handles the configuration singleton. Duplicate rows from
// a lost first-read race are tolerated: readers always take the oldest row.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

func scanSettings(row pgx.Row) (*model.ExamSettings, error) {
	s := &model.ExamSettings{}
	var quotas []byte
	err := row.Scan(
		&s.ID, &s.ExamDurationMinutes, &s.ExamInstructions, &s.ExamSlipInstructions,
		&s.ExamVenue, &s.ExamStartDate, &s.ExamStartTime, &s.ExamGroupSize,
		&s.ExamGroupIntervalHours, &s.ExamReportNextSteps, &s.TotalExamQuestions,
		&quotas, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(quotas, &s.QuestionsPerSubject); err != nil {
		return nil, fmt.Errorf("decode questions per subject: %w", err)
	}
	return s, nil
}

// GetOldest retrieves the oldest settings row, or pgx.ErrNoRows when none
// has been created yet.
func (r *SettingsRepository) GetOldest(ctx context.Context) (*model.ExamSettings, error) {
	return scanSettings(r.pool.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM exam_settings ORDER BY id ASC LIMIT 1`))
}

// Insert persists a settings row.
func (r *SettingsRepository) Insert(ctx context.Context, s *model.ExamSettings) error {
	quotas, err := json.Marshal(s.QuestionsPerSubject)
	if err != nil {
		return fmt.Errorf("encode questions per subject: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_settings (exam_duration_minutes, exam_instructions,
		    exam_slip_instructions, exam_venue, exam_start_date, exam_start_time,
		    exam_group_size, exam_group_interval_hours, exam_report_next_steps,
		    total_exam_questions, questions_per_subject)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		s.ExamDurationMinutes, s.ExamInstructions, s.ExamSlipInstructions,
		s.ExamVenue, s.ExamStartDate, s.ExamStartTime, s.ExamGroupSize,
		s.ExamGroupIntervalHours, s.ExamReportNextSteps, s.TotalExamQuestions, quotas,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Update rewrites an existing settings row.
func (r *SettingsRepository) Update(ctx context.Context, s *model.ExamSettings) error {
	quotas, err := json.Marshal(s.QuestionsPerSubject)
	if err != nil {
		return fmt.Errorf("encode questions per subject: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_settings
		 SET exam_duration_minutes = $1, exam_instructions = $2,
		     exam_slip_instructions = $3, exam_venue = $4, exam_start_date = $5,
		     exam_start_time = $6, exam_group_size = $7,
		     exam_group_interval_hours = $8, exam_report_next_steps = $9,
		     total_exam_questions = $10, questions_per_subject = $11,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $12`,
		s.ExamDurationMinutes, s.ExamInstructions, s.ExamSlipInstructions,
		s.ExamVenue, s.ExamStartDate, s.ExamStartTime, s.ExamGroupSize,
		s.ExamGroupIntervalHours, s.ExamReportNextSteps, s.TotalExamQuestions,
		quotas, s.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
