package model

import "time"

// Default instructional text blocks, carried over from the paper process they
// replaced. All are editable through the settings endpoint.
const (
	defaultExamInstructions = `• The entrance examination consists of 5 subjects with 20 questions each.
• Once you start the exam, you must complete it in one sitting.
• Make sure you have a stable internet connection before starting the exam.
• Your answers are automatically saved as you progress through the exam.`

	defaultSlipInstructions = `1. Please arrive at the exam venue at least 30 minutes before your scheduled time.
2. Bring this registration slip, a valid ID card, and writing materials.
3. Your login credentials: Exam Number and Password (your surname).
4. Mobile phones and electronic devices are not allowed during the exam.
5. Dress appropriately in accordance with the school dress code.
6. In case of any emergency on the day of the exam, contact: 08012345678.
7. For any inquiries, please contact the school administration.`

	defaultReportNextSteps = `1. Admission results will be published within 2 weeks on the school website and notice board.
2. If selected, you will need to complete the enrollment process by the deadline stated in your admission letter.
3. Be prepared to provide original copies of your documents during enrollment verification.
4. For any inquiries, please contact the admission office at admissions@goodlyheritage.edu.ng or call 08012345678.`
)

// ExamSettings is the configuration singleton controlling exam timing,
// grouping and question sampling. If no row exists it is materialized lazily
// with these defaults on first read; under concurrent first reads the oldest
// row wins deterministically.
type ExamSettings struct {
	ID                     int            `json:"id"`
	ExamDurationMinutes    int            `json:"exam_duration_minutes"`
	ExamInstructions       string         `json:"exam_instructions"`
	ExamSlipInstructions   string         `json:"exam_slip_instructions"`
	ExamVenue              string         `json:"exam_venue"`
	ExamStartDate          time.Time      `json:"exam_start_date"`
	ExamStartTime          string         `json:"exam_start_time"` // "HH:MM"
	ExamGroupSize          int            `json:"exam_group_size"`
	ExamGroupIntervalHours int            `json:"exam_group_interval_hours"`
	ExamReportNextSteps    string         `json:"exam_report_next_steps"`
	TotalExamQuestions     int            `json:"total_exam_questions"`
	QuestionsPerSubject    map[string]int `json:"questions_per_subject"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

// DefaultExamSettings returns the settings used when none have been configured.
func DefaultExamSettings() *ExamSettings {
	return &ExamSettings{
		ExamDurationMinutes:    120,
		ExamInstructions:       defaultExamInstructions,
		ExamSlipInstructions:   defaultSlipInstructions,
		ExamVenue:              "Goodly Heritage Comprehensive High School",
		ExamStartDate:          time.Now().AddDate(0, 0, 7).Truncate(24 * time.Hour),
		ExamStartTime:          "09:00",
		ExamGroupSize:          10,
		ExamGroupIntervalHours: 2,
		ExamReportNextSteps:    defaultReportNextSteps,
		TotalExamQuestions:     100,
		QuestionsPerSubject: map[string]int{
			"Mathematics":            20,
			"English":                20,
			"Quantitative Reasoning": 20,
			"Verbal Reasoning":       20,
			"General Paper":          20,
		},
	}
}

// PublicSettings is the student-visible subset of the configuration.
type PublicSettings struct {
	ExamDurationMinutes  int            `json:"exam_duration_minutes"`
	ExamInstructions     string         `json:"exam_instructions"`
	ExamSlipInstructions string         `json:"exam_slip_instructions"`
	ExamVenue            string         `json:"exam_venue"`
	ExamStartDate        time.Time      `json:"exam_start_date"`
	ExamStartTime        string         `json:"exam_start_time"`
	TotalExamQuestions   int            `json:"total_exam_questions"`
	QuestionsPerSubject  map[string]int `json:"questions_per_subject"`
}

// Public projects the student-visible subset.
func (s *ExamSettings) Public() *PublicSettings {
	return &PublicSettings{
		ExamDurationMinutes:  s.ExamDurationMinutes,
		ExamInstructions:     s.ExamInstructions,
		ExamSlipInstructions: s.ExamSlipInstructions,
		ExamVenue:            s.ExamVenue,
		ExamStartDate:        s.ExamStartDate,
		ExamStartTime:        s.ExamStartTime,
		TotalExamQuestions:   s.TotalExamQuestions,
		QuestionsPerSubject:  s.QuestionsPerSubject,
	}
}

// UpdateSettingsRequest is the partial-update payload; nil fields are left
// untouched.
type UpdateSettingsRequest struct {
	ExamDurationMinutes    *int           `json:"exam_duration_minutes" binding:"omitempty,min=1"`
	ExamInstructions       *string        `json:"exam_instructions"`
	ExamSlipInstructions   *string        `json:"exam_slip_instructions"`
	ExamVenue              *string        `json:"exam_venue"`
	ExamStartDate          *time.Time     `json:"exam_start_date"`
	ExamStartTime          *string        `json:"exam_start_time" binding:"omitempty,datetime=15:04"`
	ExamGroupSize          *int           `json:"exam_group_size" binding:"omitempty,min=1"`
	ExamGroupIntervalHours *int           `json:"exam_group_interval_hours" binding:"omitempty,min=0"`
	ExamReportNextSteps    *string        `json:"exam_report_next_steps"`
	TotalExamQuestions     *int           `json:"total_exam_questions" binding:"omitempty,min=1"`
	QuestionsPerSubject    map[string]int `json:"questions_per_subject"`
}
