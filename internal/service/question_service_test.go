package service

import (
	"context"
	"errors"
	"testing"

	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type fakeQuestionStore struct {
	questions map[uuid.UUID]*model.Question
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{questions: map[uuid.UUID]*model.Question{}}
}

func (f *fakeQuestionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *q
	return &copied, nil
}

func (f *fakeQuestionStore) Create(_ context.Context, q *model.Question) error {
	q.ID = uuid.New()
	copied := *q
	f.questions[q.ID] = &copied
	return nil
}

func (f *fakeQuestionStore) Update(_ context.Context, q *model.Question) error {
	if _, ok := f.questions[q.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *q
	f.questions[q.ID] = &copied
	return nil
}

func (f *fakeQuestionStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.questions[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.questions, id)
	return nil
}

func (f *fakeQuestionStore) ListPaginated(_ context.Context, limit, offset int) ([]model.Question, int, error) {
	var all []model.Question
	for _, q := range f.questions {
		all = append(all, *q)
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeQuestionStore) ListBySubject(_ context.Context) ([]model.SubjectGroup, error) {
	bySubject := map[string][]model.Question{}
	for _, q := range f.questions {
		bySubject[q.Subject] = append(bySubject[q.Subject], *q)
	}
	var groups []model.SubjectGroup
	for subject, questions := range bySubject {
		groups = append(groups, model.SubjectGroup{Subject: subject, Questions: questions})
	}
	return groups, nil
}

func (f *fakeQuestionStore) Subjects(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var subjects []string
	for _, q := range f.questions {
		if !seen[q.Subject] {
			seen[q.Subject] = true
			subjects = append(subjects, q.Subject)
		}
	}
	return subjects, nil
}

func createQuestionReq(correct string) *model.CreateQuestionRequest {
	return &model.CreateQuestionRequest{
		QuestionText:  "What is 2 + 2?",
		Options:       []string{"3", "4", "5", "6"},
		CorrectAnswer: correct,
		Subject:       "Mathematics",
		Marks:         1,
	}
}

func TestCreateQuestionValidatesAnswerKey(t *testing.T) {
	svc := NewQuestionService(newFakeQuestionStore(), nil, zerolog.Nop())
	ctx := context.Background()

	q, err := svc.Create(ctx, createQuestionReq("4"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.ID == uuid.Nil {
		t.Error("no ID assigned")
	}

	_, err = svc.Create(ctx, createQuestionReq("7"))
	if !errors.Is(err, ErrAnswerNotInOptions) {
		t.Fatalf("err = %v, want ErrAnswerNotInOptions", err)
	}
}

func TestUpdateQuestionValidatesAnswerKey(t *testing.T) {
	store := newFakeQuestionStore()
	svc := NewQuestionService(store, nil, zerolog.Nop())
	ctx := context.Background()

	q, err := svc.Create(ctx, createQuestionReq("4"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, q.ID, createQuestionReq("9")); !errors.Is(err, ErrAnswerNotInOptions) {
		t.Fatalf("err = %v, want ErrAnswerNotInOptions", err)
	}

	updated, err := svc.Update(ctx, q.ID, createQuestionReq("5"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CorrectAnswer != "5" {
		t.Errorf("answer = %q, want 5", updated.CorrectAnswer)
	}
}

func TestUpdateMissingQuestion(t *testing.T) {
	svc := NewQuestionService(newFakeQuestionStore(), nil, zerolog.Nop())

	_, err := svc.Update(context.Background(), uuid.New(), createQuestionReq("4"))
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("err = %v, want ErrNoRows", err)
	}
}

func TestBulkImportAllOrNothingValidation(t *testing.T) {
	store := newFakeQuestionStore()
	svc := NewQuestionService(store, nil, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.BulkImport(ctx, &model.BulkImportRequest{
		Questions: []model.CreateQuestionRequest{
			*createQuestionReq("4"),
			*createQuestionReq("bogus"),
		},
	})
	if !errors.Is(err, ErrAnswerNotInOptions) {
		t.Fatalf("err = %v, want ErrAnswerNotInOptions", err)
	}
	if len(store.questions) != 0 {
		t.Fatalf("partial import persisted %d questions", len(store.questions))
	}

	count, err := svc.BulkImport(ctx, &model.BulkImportRequest{
		Questions: []model.CreateQuestionRequest{
			*createQuestionReq("4"),
			*createQuestionReq("5"),
		},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 || len(store.questions) != 2 {
		t.Errorf("imported = %d (stored %d), want 2", count, len(store.questions))
	}
}

func TestQuestionViewHidesAnswerKey(t *testing.T) {
	q := model.Question{
		ID:            uuid.New(),
		QuestionText:  "What is 2 + 2?",
		Options:       []string{"3", "4", "5", "6"},
		CorrectAnswer: "4",
		Subject:       "Mathematics",
		Marks:         1,
	}
	view := q.View()
	if view.QuestionText != q.QuestionText || len(view.Options) != 4 {
		t.Errorf("view lost data: %+v", view)
	}
}
