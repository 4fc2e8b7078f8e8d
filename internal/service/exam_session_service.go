package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ExamResultStore is the attempt persistence surface the session engine needs.
type ExamResultStore interface {
	Create(ctx context.Context, res *model.ExamResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamResult, error)
	ListByUser(ctx context.Context, userID int) ([]model.ExamResult, error)
	ListAll(ctx context.Context) ([]model.ExamResultSummary, error)
	Complete(ctx context.Context, id uuid.UUID, answers map[string]string, totalScore, totalQuestions int, endTime time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteIncompleteByUser(ctx context.Context, userID int) (int64, error)
}

// QuestionSampler draws random question subsets for new attempts.
type QuestionSampler interface {
	SampleBySubject(ctx context.Context, subject string, n int) ([]model.Question, error)
	SampleGlobal(ctx context.Context, n int) ([]model.Question, error)
}

// ExamSessionService drives the attempt lifecycle: start, submit, cancel,
// reset. Scoring always reads the snapshot frozen at start time.
type ExamSessionService struct {
	results   ExamResultStore
	questions QuestionSampler
	settings  SettingsProvider

	now func() time.Time
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(results ExamResultStore, questions QuestionSampler, settings SettingsProvider) *ExamSessionService {
	return &ExamSessionService{
		results:   results,
		questions: questions,
		settings:  settings,
		now:       time.Now,
	}
}

// Start opens a new attempt for the student: samples questions per the
// current settings, freezes the answer-key snapshot and persists the attempt.
// The returned payload carries question views only, never the answer key.
func (s *ExamSessionService) Start(ctx context.Context, userID int) (*model.StartedExam, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	sampled, err := s.sample(ctx, settings)
	if err != nil {
		return nil, err
	}
	if len(sampled) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	snapshot := make(map[string]model.SnapshotEntry, len(sampled))
	views := make([]model.QuestionView, 0, len(sampled))
	obtainable := 0
	for i := range sampled {
		q := &sampled[i]
		snapshot[q.ID.String()] = model.SnapshotEntry{
			Marks:         q.Marks,
			CorrectAnswer: q.CorrectAnswer,
		}
		views = append(views, q.View())
		obtainable += q.Marks
	}

	res := &model.ExamResult{
		UserID:               userID,
		Answers:              map[string]string{},
		ExamQuestions:        snapshot,
		TotalQuestions:       len(sampled),
		TotalObtainableMarks: obtainable,
		StartTime:            s.now(),
	}
	if err := s.results.Create(ctx, res); err != nil {
		return nil, err
	}

	return &model.StartedExam{
		ID:        res.ID,
		StartTime: res.StartTime,
		Questions: views,
	}, nil
}

// Submit scores the attempt against its frozen snapshot and persists the
// terminal state in one write. The submitted answer map is authoritative:
// it replaces anything recorded earlier.
func (s *ExamSessionService) Submit(ctx context.Context, userID int, resultID uuid.UUID, answers map[string]string) (*model.ScoredResult, error) {
	res, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if res.UserID != userID {
		return nil, ErrNotResultOwner
	}
	if res.Completed {
		return nil, ErrExamAlreadyCompleted
	}
	if answers == nil {
		answers = map[string]string{}
	}

	score := scoreAnswers(res.ExamQuestions, answers)
	endTime := s.now()
	if err := s.results.Complete(ctx, res.ID, answers, score, res.TotalQuestions, endTime); err != nil {
		// A concurrent submit of the same attempt reached the terminal
		// write first.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamAlreadyCompleted
		}
		return nil, err
	}

	res.Answers = answers
	res.TotalScore = score
	res.EndTime = &endTime
	res.Completed = true
	return scored(res), nil
}

// Cancel discards a non-completed attempt so the student can start over.
func (s *ExamSessionService) Cancel(ctx context.Context, userID int, resultID uuid.UUID) error {
	res, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		return err
	}
	if res.UserID != userID {
		return ErrNotResultOwner
	}
	if res.Completed {
		return ErrExamAlreadyCompleted
	}
	return s.results.Delete(ctx, res.ID)
}

// ResetIncomplete removes all non-completed attempts for a user and reports
// how many were removed. Removing zero is not an error here: the student's
// own reset is idempotent, and the admin boundary decides whether an empty
// reset is worth a 404.
func (s *ExamSessionService) ResetIncomplete(ctx context.Context, userID int) (int64, error) {
	return s.results.DeleteIncompleteByUser(ctx, userID)
}

// Get retrieves a single attempt. Students may only read their own.
func (s *ExamSessionService) Get(ctx context.Context, userID int, role model.Role, resultID uuid.UUID) (*model.ScoredResult, error) {
	res, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleAdmin && res.UserID != userID {
		return nil, ErrNotResultOwner
	}
	return scored(res), nil
}

// ListMine retrieves the student's own attempts, newest first.
func (s *ExamSessionService) ListMine(ctx context.Context, userID int) ([]model.ScoredResult, error) {
	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.ScoredResult, 0, len(results))
	for i := range results {
		out = append(out, *scored(&results[i]))
	}
	return out, nil
}

// ListAll retrieves every attempt with its owner for admin reporting.
func (s *ExamSessionService) ListAll(ctx context.Context) ([]model.ExamResultSummary, error) {
	return s.results.ListAll(ctx)
}

// sample draws questions per the configured per-subject quotas, or a single
// global draw of TotalExamQuestions when no quotas are configured. Subjects
// are visited in sorted order so the paper layout is stable.
func (s *ExamSessionService) sample(ctx context.Context, settings *model.ExamSettings) ([]model.Question, error) {
	if len(settings.QuestionsPerSubject) == 0 {
		questions, err := s.questions.SampleGlobal(ctx, settings.TotalExamQuestions)
		if err != nil {
			return nil, fmt.Errorf("sample questions: %w", err)
		}
		return questions, nil
	}

	subjects := make([]string, 0, len(settings.QuestionsPerSubject))
	for subject := range settings.QuestionsPerSubject {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	var sampled []model.Question
	for _, subject := range subjects {
		quota := settings.QuestionsPerSubject[subject]
		if quota <= 0 {
			continue
		}
		questions, err := s.questions.SampleBySubject(ctx, subject, quota)
		if err != nil {
			return nil, fmt.Errorf("sample %s questions: %w", subject, err)
		}
		sampled = append(sampled, questions...)
	}
	return sampled, nil
}

// scoreAnswers tallies marks for answers matching the frozen snapshot.
// Answer keys not present in the snapshot are ignored.
func scoreAnswers(snapshot map[string]model.SnapshotEntry, answers map[string]string) int {
	score := 0
	for id, entry := range snapshot {
		if answers[id] == entry.CorrectAnswer {
			score += entry.Marks
		}
	}
	return score
}

// scored wraps a result with its percentage, rounded to one decimal place.
func scored(res *model.ExamResult) *model.ScoredResult {
	out := &model.ScoredResult{ExamResult: *res}
	if res.Completed && res.TotalObtainableMarks > 0 {
		out.Percentage = math.Round(float64(res.TotalScore)/float64(res.TotalObtainableMarks)*1000) / 10
	}
	return out
}
