package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/goodlyheritage/entrex-backend/internal/config"
	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// QuestionStore is the question-bank persistence surface.
type QuestionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	Create(ctx context.Context, q *model.Question) error
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListPaginated(ctx context.Context, limit, offset int) ([]model.Question, int, error)
	ListBySubject(ctx context.Context) ([]model.SubjectGroup, error)
	Subjects(ctx context.Context) ([]string, error)
}

// QuestionService handles question-bank management. The distinct-subjects
// list is cached in Redis and invalidated on every write.
type QuestionService struct {
	store QuestionStore
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewQuestionService creates a new QuestionService. rdb may be nil; caching
// is then skipped entirely.
func NewQuestionService(store QuestionStore, rdb *redis.Client, log zerolog.Logger) *QuestionService {
	return &QuestionService{store: store, rdb: rdb, log: log}
}

// Create validates and inserts a new question.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	q, err := questionFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, q); err != nil {
		return nil, err
	}
	s.invalidateSubjects(ctx)
	return q, nil
}

// Update validates and rewrites an existing question. Attempts already
// started keep scoring against their frozen snapshot.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.CreateQuestionRequest) (*model.Question, error) {
	q, err := questionFromRequest(req)
	if err != nil {
		return nil, err
	}
	q.ID = id
	if err := s.store.Update(ctx, q); err != nil {
		return nil, err
	}
	s.invalidateSubjects(ctx)
	return q, nil
}

// Delete removes a question from the bank.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateSubjects(ctx)
	return nil
}

// Get retrieves a single question including its answer key (admin only).
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return s.store.GetByID(ctx, id)
}

// List retrieves a page of questions, newest first.
func (s *QuestionService) List(ctx context.Context, limit, offset int) ([]model.Question, int, error) {
	return s.store.ListPaginated(ctx, limit, offset)
}

// ListBySubject retrieves the whole bank grouped per subject.
func (s *QuestionService) ListBySubject(ctx context.Context) ([]model.SubjectGroup, error) {
	return s.store.ListBySubject(ctx)
}

// Subjects returns the distinct subject tags, served from cache when warm.
func (s *QuestionService) Subjects(ctx context.Context) ([]string, error) {
	key := config.CacheKey.QuestionSubjectsKey()
	if s.rdb != nil {
		cached, err := s.rdb.SMembers(ctx, key).Result()
		if err == nil && len(cached) > 0 {
			slices.Sort(cached)
			return cached, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("subjects cache read failed")
		}
	}

	subjects, err := s.store.Subjects(ctx)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil && len(subjects) > 0 {
		members := make([]interface{}, len(subjects))
		for i, subject := range subjects {
			members[i] = subject
		}
		if err := s.rdb.SAdd(ctx, key, members...).Err(); err != nil {
			s.log.Warn().Err(err).Msg("subjects cache write failed")
		}
	}
	return subjects, nil
}

// BulkImport validates every entry up front, then inserts them all. A
// validation failure anywhere rejects the whole batch; insert failures stop
// at the failing entry and report how many made it in.
func (s *QuestionService) BulkImport(ctx context.Context, req *model.BulkImportRequest) (int, error) {
	questions := make([]*model.Question, 0, len(req.Questions))
	for i := range req.Questions {
		q, err := questionFromRequest(&req.Questions[i])
		if err != nil {
			return 0, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, q)
	}

	for i, q := range questions {
		if err := s.store.Create(ctx, q); err != nil {
			s.invalidateSubjects(ctx)
			return i, fmt.Errorf("insert question %d: %w", i+1, err)
		}
	}
	s.invalidateSubjects(ctx)
	return len(questions), nil
}

func (s *QuestionService) invalidateSubjects(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.QuestionSubjectsKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("subjects cache invalidation failed")
	}
}

// questionFromRequest builds a question, enforcing that the answer key is
// one of the options.
func questionFromRequest(req *model.CreateQuestionRequest) (*model.Question, error) {
	if !slices.Contains(req.Options, req.CorrectAnswer) {
		return nil, ErrAnswerNotInOptions
	}
	return &model.Question{
		QuestionText:  req.QuestionText,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Subject:       req.Subject,
		Marks:         req.Marks,
	}, nil
}
