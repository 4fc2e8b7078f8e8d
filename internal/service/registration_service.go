package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/goodlyheritage/entrex-backend/internal/config"
	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/goodlyheritage/entrex-backend/internal/repository"
	"github.com/rs/zerolog"
)

// examNumberAttempts bounds the probe loop when allocating an exam number.
const examNumberAttempts = 10

// UserStore is the user persistence surface the registration service needs.
type UserStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	ExamNumberExists(ctx context.Context, examNumber string) (bool, error)
	CountStudents(ctx context.Context) (int, error)
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int) (*model.User, error)
	ListStudents(ctx context.Context, limit, offset int) ([]model.User, int, error)
	ListAllStudents(ctx context.Context) ([]model.User, error)
	UpdateSchedule(ctx context.Context, id int, group int, examDateTime time.Time) error
}

// SettingsProvider yields the current exam configuration.
type SettingsProvider interface {
	Get(ctx context.Context) (*model.ExamSettings, error)
}

// PasswordHasher hashes initial passwords at registration time.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// RegistrationService implements candidate registration: exam number
// allocation, group assignment and slot scheduling.
type RegistrationService struct {
	users    UserStore
	settings SettingsProvider
	hasher   PasswordHasher
	cfg      *config.Config
	log      zerolog.Logger

	// Overridable for deterministic tests.
	now    func() time.Time
	digits func() int
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(users UserStore, settings SettingsProvider, hasher PasswordHasher, cfg *config.Config, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		users:    users,
		settings: settings,
		hasher:   hasher,
		cfg:      cfg,
		log:      log.With().Str("component", "registration_service").Logger(),
		now:      time.Now,
		digits:   func() int { return rand.Intn(10000) },
	}
}

// Register creates a student account. The exam number, group and slot are
// computed once here and never recomputed automatically afterwards; the
// initial password is the candidate's surname.
func (s *RegistrationService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Pre-check for a friendlier error; the unique index still backstops
	// concurrent registrations with the same address.
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, repository.ErrDuplicateEmail
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	count, err := s.users.CountStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	group := count / settings.ExamGroupSize
	slot := examSlot(settings, group)

	hash, err := s.hasher.HashPassword(req.Surname)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("parse date of birth: %w", err)
	}

	nationality := req.Nationality
	if nationality == "" {
		nationality = "Nigerian"
	}

	user := &model.User{
		Surname:       req.Surname,
		FirstName:     req.FirstName,
		FullName:      req.Surname + " " + req.FirstName,
		Email:         email,
		PhoneNumber:   req.PhoneNumber,
		DateOfBirth:   &dob,
		Sex:           req.Sex,
		StateOfOrigin: req.StateOfOrigin,
		Nationality:   nationality,
		Role:          model.RoleStudent,
		PasswordHash:  hash,
		ExamGroup:     group,
		ExamDateTime:  &slot,
	}
	if err := s.createWithExamNumber(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAdmin creates an administrator account with the given password.
func (s *RegistrationService) CreateAdmin(ctx context.Context, req *model.CreateAdminRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Surname:      req.Surname,
		FirstName:    req.FirstName,
		FullName:     req.Surname + " " + req.FirstName,
		Email:        email,
		Nationality:  "Nigerian",
		Role:         model.RoleAdmin,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *RegistrationService) GetUser(ctx context.Context, id int) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListStudents retrieves a page of registered students.
func (s *RegistrationService) ListStudents(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	return s.users.ListStudents(ctx, limit, offset)
}

// RecomputeSchedule reassigns every student's group and slot from the current
// settings, in registration order. This is the only path that rewrites
// schedules after registration; it is explicitly administrative.
func (s *RegistrationService) RecomputeSchedule(ctx context.Context) (int, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}
	students, err := s.users.ListAllStudents(ctx)
	if err != nil {
		return 0, fmt.Errorf("list students: %w", err)
	}

	for i := range students {
		group := i / settings.ExamGroupSize
		if err := s.users.UpdateSchedule(ctx, students[i].ID, group, examSlot(settings, group)); err != nil {
			return i, fmt.Errorf("update schedule for user %d: %w", students[i].ID, err)
		}
	}
	return len(students), nil
}

// createWithExamNumber draws candidate numbers of the form <prefix><yy><dddd>
// and inserts the student row. The unique index is the final arbiter: a
// candidate that probes free but loses the insert race burns one attempt and
// the loop draws again. With 10k numbers per year the budget is
// overwhelmingly sufficient until the space is nearly full, at which point
// registration fails loudly rather than looping forever.
func (s *RegistrationService) createWithExamNumber(ctx context.Context, user *model.User) error {
	year := s.now().Year() % 100
	for i := 0; i < examNumberAttempts; i++ {
		candidate := fmt.Sprintf("%s%02d%04d", s.cfg.ExamNumberPrefix, year, s.digits())
		exists, err := s.users.ExamNumberExists(ctx, candidate)
		if err != nil {
			return fmt.Errorf("check exam number: %w", err)
		}
		if exists {
			continue
		}
		user.ExamNumber = &candidate
		err = s.users.Create(ctx, user)
		if errors.Is(err, repository.ErrDuplicateExamNumber) {
			continue
		}
		return err
	}
	s.log.Error().
		Int("attempts", examNumberAttempts).
		Msg("Exam number allocation exhausted; number space is nearly full")
	return ErrExamNumberExhausted
}

// examSlot computes the wall-clock slot for a group: the configured start
// date and time, plus group x interval hours.
func examSlot(settings *model.ExamSettings, group int) time.Time {
	hour, minute := parseClock(settings.ExamStartTime)
	d := settings.ExamStartDate
	base := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.Local)
	return base.Add(time.Duration(group*settings.ExamGroupIntervalHours) * time.Hour)
}

// parseClock parses "HH:MM", falling back to 09:00 on malformed input.
// The settings validator enforces the format on writes.
func parseClock(clock string) (int, int) {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return 9, 0
	}
	hour, err1 := strconv.Atoi(hh)
	minute, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil {
		return 9, 0
	}
	return hour, minute
}
