package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goodlyheritage/entrex-backend/internal/config"
	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// settingsCacheTTL bounds staleness of the cached settings document.
const settingsCacheTTL = 5 * time.Minute

// SettingsStore is the settings persistence surface.
type SettingsStore interface {
	GetOldest(ctx context.Context) (*model.ExamSettings, error)
	Insert(ctx context.Context, s *model.ExamSettings) error
	Update(ctx context.Context, s *model.ExamSettings) error
}

// SettingsService manages the configuration singleton with a Redis
// read-through cache. The row is materialized lazily with defaults on first
// read; if concurrent first reads each insert a row, every reader still
// agrees on the oldest one.
type SettingsService struct {
	store SettingsStore
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewSettingsService creates a new SettingsService. rdb may be nil; caching
// is then skipped entirely.
func NewSettingsService(store SettingsStore, rdb *redis.Client, log zerolog.Logger) *SettingsService {
	return &SettingsService{store: store, rdb: rdb, log: log}
}

// Get returns the current settings, creating the default row if none exists.
func (s *SettingsService) Get(ctx context.Context) (*model.ExamSettings, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, settings)
	return settings, nil
}

// GetPublic returns the student-visible subset of the settings.
func (s *SettingsService) GetPublic(ctx context.Context) (*model.PublicSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return settings.Public(), nil
}

// Update applies a partial update to the settings row and invalidates the
// cache. Nil fields in the request are left untouched.
func (s *SettingsService) Update(ctx context.Context, req *model.UpdateSettingsRequest) (*model.ExamSettings, error) {
	// Bypass the cache: updates must start from the durable row.
	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	applySettingsUpdate(settings, req)
	if err := s.store.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}

	s.invalidate(ctx)
	return settings, nil
}

// load reads the oldest settings row, inserting defaults when none exists.
func (s *SettingsService) load(ctx context.Context) (*model.ExamSettings, error) {
	settings, err := s.store.GetOldest(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	defaults := model.DefaultExamSettings()
	if err := s.store.Insert(ctx, defaults); err != nil {
		return nil, fmt.Errorf("insert default settings: %w", err)
	}
	// Re-read: a concurrent first reader may have inserted an older row.
	settings, err = s.store.GetOldest(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload settings: %w", err)
	}
	return settings, nil
}

func (s *SettingsService) fromCache(ctx context.Context) *model.ExamSettings {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, config.CacheKey.ExamSettingsKey()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("settings cache read failed")
		}
		return nil
	}
	settings := &model.ExamSettings{}
	if err := json.Unmarshal(raw, settings); err != nil {
		s.log.Warn().Err(err).Msg("settings cache decode failed")
		return nil
	}
	return settings
}

func (s *SettingsService) toCache(ctx context.Context, settings *model.ExamSettings) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.ExamSettingsKey(), raw, settingsCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("settings cache write failed")
	}
}

func (s *SettingsService) invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.ExamSettingsKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("settings cache invalidation failed")
	}
}

func applySettingsUpdate(s *model.ExamSettings, req *model.UpdateSettingsRequest) {
	if req.ExamDurationMinutes != nil {
		s.ExamDurationMinutes = *req.ExamDurationMinutes
	}
	if req.ExamInstructions != nil {
		s.ExamInstructions = *req.ExamInstructions
	}
	if req.ExamSlipInstructions != nil {
		s.ExamSlipInstructions = *req.ExamSlipInstructions
	}
	if req.ExamVenue != nil {
		s.ExamVenue = *req.ExamVenue
	}
	if req.ExamStartDate != nil {
		s.ExamStartDate = *req.ExamStartDate
	}
	if req.ExamStartTime != nil {
		s.ExamStartTime = *req.ExamStartTime
	}
	if req.ExamGroupSize != nil {
		s.ExamGroupSize = *req.ExamGroupSize
	}
	if req.ExamGroupIntervalHours != nil {
		s.ExamGroupIntervalHours = *req.ExamGroupIntervalHours
	}
	if req.ExamReportNextSteps != nil {
		s.ExamReportNextSteps = *req.ExamReportNextSteps
	}
	if req.TotalExamQuestions != nil {
		s.TotalExamQuestions = *req.TotalExamQuestions
	}
	if req.QuestionsPerSubject != nil {
		s.QuestionsPerSubject = req.QuestionsPerSubject
	}
}
