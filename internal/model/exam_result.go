package model

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotEntry is one frozen answer-key entry captured at exam start.
// Scoring always reads the snapshot, never the live question bank, so later
// edits or deletions of questions cannot change a submitted score.
type SnapshotEntry struct {
	Marks         int    `json:"marks"`
	CorrectAnswer string `json:"correct_answer"`
}

// ExamResult represents one student's exam attempt. At most one result with
// Completed=false may exist per user (enforced by a partial unique index).
// The question snapshot is deliberately excluded from JSON: the answer key is
// never serialized to any client.
type ExamResult struct {
	ID                   uuid.UUID                `json:"id"`
	UserID               int                      `json:"user_id"`
	Answers              map[string]string        `json:"answers"`
	ExamQuestions        map[string]SnapshotEntry `json:"-"`
	TotalScore           int                      `json:"total_score"`
	TotalQuestions       int                      `json:"total_questions"`
	TotalObtainableMarks int                      `json:"total_obtainable_marks"`
	StartTime            time.Time                `json:"start_time"`
	EndTime              *time.Time               `json:"end_time,omitempty"`
	Completed            bool                     `json:"completed"`
	CreatedAt            time.Time                `json:"created_at"`
	UpdatedAt            time.Time                `json:"updated_at"`
}

// StartedExam is returned to the student when an attempt begins.
type StartedExam struct {
	ID        uuid.UUID      `json:"id"`
	StartTime time.Time      `json:"start_time"`
	Questions []QuestionView `json:"questions"`
}

// SubmitRequest carries the authoritative answer map for terminal scoring.
// Whatever is supplied here replaces any previously recorded answers.
type SubmitRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// ScoredResult is the terminal outcome of a submitted attempt.
type ScoredResult struct {
	ExamResult
	Percentage float64 `json:"percentage"`
}

// ExamResultSummary joins a result with its owner for admin reporting.
type ExamResultSummary struct {
	ExamResult
	ExamNumber *string `json:"exam_number"`
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
}
