package model

import (
	"time"

	"github.com/google/uuid"
)

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

// Question represents a single question-bank entry. Options are
// order-significant for display; CorrectAnswer must equal one of them.
type Question struct {
	ID            uuid.UUID `json:"id"`
	QuestionText  string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correct_answer,omitempty"`
	Subject       string    `json:"subject"`
	Marks         int       `json:"marks"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuestionView is the student-facing projection of a question.
// It never carries the correct answer.
type QuestionView struct {
	ID           uuid.UUID `json:"id"`
	QuestionText string    `json:"question"`
	Options      []string  `json:"options"`
	Marks        int       `json:"marks"`
	Subject      string    `json:"subject"`
}

// View strips the answer key from a question.
func (q *Question) View() QuestionView {
	return QuestionView{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Options:      q.Options,
		Marks:        q.Marks,
		Subject:      q.Subject,
	}
}

// CreateQuestionRequest is the payload for adding a question to the bank.
type CreateQuestionRequest struct {
	QuestionText  string   `json:"question" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"required,len=4,dive,required,max=500"`
	CorrectAnswer string   `json:"correct_answer" binding:"required,max=500"`
	Subject       string   `json:"subject" binding:"required,min=1,max=100"`
	Marks         int      `json:"marks" binding:"required,min=1"`
}

// BulkImportRequest is the payload for importing many questions at once.
type BulkImportRequest struct {
	Questions []CreateQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// SubjectGroup holds all questions for one subject, for the admin
// by-subject view.
type SubjectGroup struct {
	Subject   string     `json:"subject"`
	Questions []Question `json:"questions"`
}
