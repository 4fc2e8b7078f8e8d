package service

import (
	"context"
	"time"

	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/goodlyheritage/entrex-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// In-memory stores backing the unit tests. They mirror the constraints the
// real schema enforces: unique email and exam number, and at most one
// non-completed result per user.

type fakeUserStore struct {
	users  []*model.User
	nextID int
}

func (f *fakeUserStore) find(match func(*model.User) bool) (*model.User, error) {
	for _, u := range f.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) GetByID(_ context.Context, id int) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f *fakeUserStore) GetByExamNumber(_ context.Context, examNumber string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ExamNumber != nil && *u.ExamNumber == examNumber })
}

func (f *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(nil, email)
	return err == nil, nil
}

func (f *fakeUserStore) ExamNumberExists(_ context.Context, examNumber string) (bool, error) {
	_, err := f.GetByExamNumber(nil, examNumber)
	return err == nil, nil
}

func (f *fakeUserStore) CountStudents(_ context.Context) (int, error) {
	count := 0
	for _, u := range f.users {
		if u.Role == model.RoleStudent {
			count++
		}
	}
	return count, nil
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return errDuplicate("email")
		}
		if existing.ExamNumber != nil && u.ExamNumber != nil && *existing.ExamNumber == *u.ExamNumber {
			return errDuplicate("exam_number")
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	copied := *u
	f.users = append(f.users, &copied)
	return nil
}

func (f *fakeUserStore) ListStudents(_ context.Context, limit, offset int) ([]model.User, int, error) {
	all, _ := f.ListAllStudents(nil)
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

func (f *fakeUserStore) ListAllStudents(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if u.Role == model.RoleStudent {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) UpdatePasswordHash(_ context.Context, id int, passwordHash string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeUserStore) UpdateSchedule(_ context.Context, id int, group int, examDateTime time.Time) error {
	for _, u := range f.users {
		if u.ID == id {
			u.ExamGroup = group
			t := examDateTime
			u.ExamDateTime = &t
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeUserStore) DeleteStudents(_ context.Context) (int64, error) {
	var kept []*model.User
	var removed int64
	for _, u := range f.users {
		if u.Role == model.RoleStudent {
			removed++
			continue
		}
		kept = append(kept, u)
	}
	f.users = kept
	return removed, nil
}

func errDuplicate(field string) error {
	if field == "exam_number" {
		return repository.ErrDuplicateExamNumber
	}
	return repository.ErrDuplicateEmail
}

type fakeSettingsProvider struct {
	settings *model.ExamSettings
}

func (f *fakeSettingsProvider) Get(_ context.Context) (*model.ExamSettings, error) {
	copied := *f.settings
	return &copied, nil
}

type fakeResultStore struct {
	results map[uuid.UUID]*model.ExamResult
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{results: map[uuid.UUID]*model.ExamResult{}}
}

func (f *fakeResultStore) Create(_ context.Context, res *model.ExamResult) error {
	for _, existing := range f.results {
		if existing.UserID == res.UserID && !existing.Completed {
			return repository.ErrOngoingExamExists
		}
	}
	res.ID = uuid.New()
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	copied := *res
	f.results[res.ID] = &copied
	return nil
}

func (f *fakeResultStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamResult, error) {
	res, ok := f.results[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *res
	return &copied, nil
}

func (f *fakeResultStore) ListByUser(_ context.Context, userID int) ([]model.ExamResult, error) {
	var out []model.ExamResult
	for _, res := range f.results {
		if res.UserID == userID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (f *fakeResultStore) ListAll(_ context.Context) ([]model.ExamResultSummary, error) {
	var out []model.ExamResultSummary
	for _, res := range f.results {
		out = append(out, model.ExamResultSummary{ExamResult: *res})
	}
	return out, nil
}

func (f *fakeResultStore) Complete(_ context.Context, id uuid.UUID, answers map[string]string, totalScore, totalQuestions int, endTime time.Time) error {
	res, ok := f.results[id]
	if !ok || res.Completed {
		return pgx.ErrNoRows
	}
	res.Answers = answers
	res.TotalScore = totalScore
	res.TotalQuestions = totalQuestions
	res.EndTime = &endTime
	res.Completed = true
	return nil
}

func (f *fakeResultStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.results[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.results, id)
	return nil
}

func (f *fakeResultStore) DeleteIncompleteByUser(_ context.Context, userID int) (int64, error) {
	var removed int64
	for id, res := range f.results {
		if res.UserID == userID && !res.Completed {
			delete(f.results, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeResultStore) DeleteAll(_ context.Context) (int64, error) {
	removed := int64(len(f.results))
	f.results = map[uuid.UUID]*model.ExamResult{}
	return removed, nil
}

type fakeQuestionBank struct {
	questions []model.Question
}

func (f *fakeQuestionBank) SampleBySubject(_ context.Context, subject string, n int) ([]model.Question, error) {
	var out []model.Question
	for _, q := range f.questions {
		if q.Subject == subject && len(out) < n {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionBank) SampleGlobal(_ context.Context, n int) ([]model.Question, error) {
	if n > len(f.questions) {
		n = len(f.questions)
	}
	out := make([]model.Question, n)
	copy(out, f.questions[:n])
	return out, nil
}

type fakeSettingsStore struct {
	rows []*model.ExamSettings
}

func (f *fakeSettingsStore) GetOldest(_ context.Context) (*model.ExamSettings, error) {
	if len(f.rows) == 0 {
		return nil, pgx.ErrNoRows
	}
	copied := *f.rows[0]
	return &copied, nil
}

func (f *fakeSettingsStore) Insert(_ context.Context, s *model.ExamSettings) error {
	s.ID = len(f.rows) + 1
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	copied := *s
	f.rows = append(f.rows, &copied)
	return nil
}

func (f *fakeSettingsStore) Update(_ context.Context, s *model.ExamSettings) error {
	for i, row := range f.rows {
		if row.ID == s.ID {
			copied := *s
			f.rows[i] = &copied
			return nil
		}
	}
	return pgx.ErrNoRows
}
