package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/goodlyheritage/entrex-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func bankOf(entries ...model.Question) *fakeQuestionBank {
	for i := range entries {
		if entries[i].ID == uuid.Nil {
			entries[i].ID = uuid.New()
		}
	}
	return &fakeQuestionBank{questions: entries}
}

func question(subject, correct string, marks int) model.Question {
	return model.Question{
		ID:            uuid.New(),
		QuestionText:  subject + " question",
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: correct,
		Subject:       subject,
		Marks:         marks,
	}
}

func newSessionFixture(bank *fakeQuestionBank, settings *model.ExamSettings) (*ExamSessionService, *fakeResultStore) {
	store := newFakeResultStore()
	svc := NewExamSessionService(store, bank, &fakeSettingsProvider{settings: settings})
	return svc, store
}

func TestStartNeverLeaksAnswerKey(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = nil
	bank := bankOf(question("Mathematics", "B", 2), question("English", "C", 1))
	svc, _ := newSessionFixture(bank, settings)

	started, err := svc.Start(context.Background(), 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(started.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(started.Questions))
	}
	for _, view := range started.Questions {
		if view.QuestionText == "" || len(view.Options) != 4 {
			t.Errorf("incomplete question view: %+v", view)
		}
	}
}

func TestStartPerSubjectQuotas(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = map[string]int{"Mathematics": 2, "English": 1}
	bank := bankOf(
		question("Mathematics", "A", 1),
		question("Mathematics", "B", 1),
		question("Mathematics", "C", 1),
		question("English", "A", 1),
		question("English", "B", 1),
	)
	svc, _ := newSessionFixture(bank, settings)

	started, err := svc.Start(context.Background(), 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	counts := map[string]int{}
	for _, view := range started.Questions {
		counts[view.Subject]++
	}
	if counts["Mathematics"] != 2 || counts["English"] != 1 {
		t.Errorf("subject counts = %v, want Mathematics:2 English:1", counts)
	}
}

func TestStartRejectsSecondOngoing(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = nil
	svc, _ := newSessionFixture(bankOf(question("Mathematics", "A", 1)), settings)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := svc.Start(ctx, 1)
	if !errors.Is(err, repository.ErrOngoingExamExists) {
		t.Fatalf("err = %v, want ErrOngoingExamExists", err)
	}
}

func TestStartEmptyBank(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = nil
	svc, _ := newSessionFixture(bankOf(), settings)

	_, err := svc.Start(context.Background(), 1)
	if !errors.Is(err, ErrNoQuestionsAvailable) {
		t.Fatalf("err = %v, want ErrNoQuestionsAvailable", err)
	}
}

func TestSubmitScoresAgainstSnapshot(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = nil
	q1 := question("Mathematics", "B", 2)
	q2 := question("English", "C", 1)
	svc, _ := newSessionFixture(bankOf(q1, q2), settings)
	ctx := context.Background()

	started, err := svc.Start(ctx, 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	result, err := svc.Submit(ctx, 1, started.ID, map[string]string{
		q1.ID.String(): "B",            // correct, 2 marks
		q2.ID.String(): "A",            // wrong
		uuid.NewString(): "D",          // not in snapshot, ignored
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.TotalScore != 2 {
		t.Errorf("score = %d, want 2", result.TotalScore)
	}
	if result.TotalQuestions != 2 {
		t.Errorf("total questions = %d, want 2", result.TotalQuestions)
	}
	if result.TotalObtainableMarks != 3 {
		t.Errorf("obtainable = %d, want 3", result.TotalObtainableMarks)
	}
	if result.Percentage != 66.7 {
		t.Errorf("percentage = %v, want 66.7", result.Percentage)
	}
	if !result.Completed || result.EndTime == nil {
		t.Error("result not marked completed")
	}
}

func TestSubmitTwiceFails(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = nil
	q := question("Mathematics", "A", 3)
	svc, store := newSessionFixture(bankOf(q), settings)
	ctx := context.Background()

	started, _ := svc.Start(ctx, 1)
	first := map[string]string{q.ID.String(): "A"}
	if _, err := svc.Submit(ctx, 1, started.ID, first); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// A rejected resubmit must leave the stored terminal state untouched.
	_, err := svc.Submit(ctx, 1, started.ID, map[string]string{q.ID.String(): "B"})
	if !errors.Is(err, ErrExamAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrExamAlreadyCompleted", err)
	}
	stored, err := store.GetByID(ctx, started.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.TotalScore != 3 {
		t.Errorf("stored score = %d, want 3 from the first submit", stored.TotalScore)
	}
	if stored.Answers[q.ID.String()] != "A" {
		t.Errorf("stored answer = %q, want %q from the first submit", stored.Answers[q.ID.String()], "A")
	}
}

func TestSubmitOwnershipEnforced(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = nil
	svc, _ := newSessionFixture(bankOf(question("Mathematics", "A", 1)), settings)
	ctx := context.Background()

	started, _ := svc.Start(ctx, 1)
	_, err := svc.Submit(ctx, 2, started.ID, nil)
	if !errors.Is(err, ErrNotResultOwner) {
		t.Fatalf("err = %v, want ErrNotResultOwner", err)
	}
}

func TestScoringImmuneToBankMutation(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = nil
	q := question("Mathematics", "B", 5)
	bank := bankOf(q)
	svc, _ := newSessionFixture(bank, settings)
	ctx := context.Background()

	started, _ := svc.Start(ctx, 1)

	// Rewrite the answer key after the attempt started. The frozen snapshot
	// must keep scoring against the original key.
	bank.questions[0].CorrectAnswer = "D"

	result, err := svc.Submit(ctx, 1, started.ID, map[string]string{q.ID.String(): "B"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.TotalScore != 5 {
		t.Errorf("score = %d, want 5 (snapshot key)", result.TotalScore)
	}
}

func TestCancelThenStartSucceeds(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = nil
	svc, _ := newSessionFixture(bankOf(question("Mathematics", "A", 1)), settings)
	ctx := context.Background()

	started, _ := svc.Start(ctx, 1)
	if err := svc.Cancel(ctx, 1, started.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Start(ctx, 1); err != nil {
		t.Fatalf("restart after cancel: %v", err)
	}
}

func TestCancelCompletedFails(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = nil
	svc, _ := newSessionFixture(bankOf(question("Mathematics", "A", 1)), settings)
	ctx := context.Background()

	started, _ := svc.Start(ctx, 1)
	if _, err := svc.Submit(ctx, 1, started.ID, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	err := svc.Cancel(ctx, 1, started.ID)
	if !errors.Is(err, ErrExamAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrExamAlreadyCompleted", err)
	}
}

func TestResetIncomplete(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = nil
	svc, _ := newSessionFixture(bankOf(question("Mathematics", "A", 1)), settings)
	ctx := context.Background()

	// Nothing in progress: the reset is an idempotent no-op, not an error.
	removed, err := svc.ResetIncomplete(ctx, 1)
	if err != nil {
		t.Fatalf("empty reset: %v", err)
	}
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}

	if _, err := svc.Start(ctx, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	removed, err = svc.ResetIncomplete(ctx, 1)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := svc.Start(ctx, 1); err != nil {
		t.Fatalf("restart after reset: %v", err)
	}
}

func TestGetRequiresOwnershipOrAdmin(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = nil
	svc, _ := newSessionFixture(bankOf(question("Mathematics", "A", 1)), settings)
	ctx := context.Background()

	started, _ := svc.Start(ctx, 1)

	if _, err := svc.Get(ctx, 2, model.RoleStudent, started.ID); !errors.Is(err, ErrNotResultOwner) {
		t.Fatalf("student err = %v, want ErrNotResultOwner", err)
	}
	if _, err := svc.Get(ctx, 2, model.RoleAdmin, started.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if _, err := svc.Get(ctx, 1, model.RoleStudent, uuid.New()); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("missing result err = %v, want ErrNoRows", err)
	}
}

func TestSubmitEndTimeRecorded(t *testing.T) {
	settings := testSettings()
	settings.QuestionsPerSubject = nil
	svc, _ := newSessionFixture(bankOf(question("Mathematics", "A", 1)), settings)
	submitted := time.Date(2025, 3, 20, 11, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return submitted }
	ctx := context.Background()

	started, _ := svc.Start(ctx, 1)
	result, err := svc.Submit(ctx, 1, started.ID, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.EndTime == nil || !result.EndTime.Equal(submitted) {
		t.Errorf("end time = %v, want %v", result.EndTime, submitted)
	}
}
