package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/rs/zerolog"
)

// ArchiveUserStore is the user surface the archive needs.
type ArchiveUserStore interface {
	ListAllStudents(ctx context.Context) ([]model.User, error)
	DeleteStudents(ctx context.Context) (int64, error)
}

// ArchiveResultStore is the result surface the archive needs.
type ArchiveResultStore interface {
	ListAll(ctx context.Context) ([]model.ExamResultSummary, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// ArchiveService implements the year-end export-then-wipe: every student and
// exam result is serialized into a zip, and only after the archive bytes are
// fully assembled are the rows deleted.
type ArchiveService struct {
	users   ArchiveUserStore
	results ArchiveResultStore
	log     zerolog.Logger

	now func() time.Time
}

// NewArchiveService creates a new ArchiveService.
func NewArchiveService(users ArchiveUserStore, results ArchiveResultStore, log zerolog.Logger) *ArchiveService {
	return &ArchiveService{users: users, results: results, log: log, now: time.Now}
}

// archivedResult is the export shape for exam_results.json. The API shape
// keeps the question snapshot out of JSON, but the archive must carry it:
// once the wipe runs, the export is the only remaining record of each
// attempt's per-question marks and answer keys.
type archivedResult struct {
	model.ExamResultSummary
	ExamQuestions map[string]model.SnapshotEntry `json:"exam_questions"`
}

// ArchiveYear builds the archive zip and wipes student and result data.
// Returns the zip bytes and a suggested filename. The wipe runs only after
// the zip is complete; an export failure leaves all data in place.
func (s *ArchiveService) ArchiveYear(ctx context.Context) ([]byte, string, error) {
	students, err := s.users.ListAllStudents(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("list students: %w", err)
	}
	results, err := s.results.ListAll(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("list exam results: %w", err)
	}

	exported := make([]archivedResult, 0, len(results))
	for i := range results {
		exported = append(exported, archivedResult{
			ExamResultSummary: results[i],
			ExamQuestions:     results[i].ExamQuestions,
		})
	}

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	if err := writeJSONEntry(zw, "students.json", students); err != nil {
		return nil, "", err
	}
	if err := writeJSONEntry(zw, "exam_results.json", exported); err != nil {
		return nil, "", err
	}
	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize archive: %w", err)
	}

	// Results first: they reference users.
	removedResults, err := s.results.DeleteAll(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("wipe exam results: %w", err)
	}
	removedStudents, err := s.users.DeleteStudents(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("wipe students: %w", err)
	}

	s.log.Info().
		Int("students", len(students)).
		Int("exam_results", len(results)).
		Int64("removed_results", removedResults).
		Int64("removed_students", removedStudents).
		Msg("academic year archived")

	filename := fmt.Sprintf("exam-archive-%d.zip", s.now().Year())
	return buf.Bytes(), filename, nil
}

func writeJSONEntry(zw *zip.Writer, name string, v interface{}) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}
