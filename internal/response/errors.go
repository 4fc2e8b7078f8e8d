package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"
	ErrNotResultOwner    ErrCode = "NOT_RESULT_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrConflict       ErrCode = "CONFLICT"
	ErrDuplicateEmail ErrCode = "DUPLICATE_EMAIL"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrOngoingExam         ErrCode = "ONGOING_EXAM_EXISTS"
	ErrExamAlreadyDone     ErrCode = "EXAM_ALREADY_SUBMITTED"
	ErrNoQuestions         ErrCode = "NO_QUESTIONS"
	ErrNoIncompleteExam    ErrCode = "NO_INCOMPLETE_EXAM"
	ErrExamNumberExhausted ErrCode = "EXAM_NUMBER_EXHAUSTED"
	ErrAnswerNotInOptions  ErrCode = "CORRECT_ANSWER_NOT_IN_OPTIONS"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid exam number/email or password."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is not valid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrNotResultOwner:
		return "You are not authorized to access this exam result."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrDuplicateEmail:
		return "A user with this email already exists."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrOngoingExam:
		return "You already have an ongoing exam."
	case ErrExamAlreadyDone:
		return "This exam has already been submitted."
	case ErrNoQuestions:
		return "The question bank has no questions available for the exam."
	case ErrNoIncompleteExam:
		return "No incomplete exam found for this user."
	case ErrExamNumberExhausted:
		return "Could not allocate a unique exam number. Please try again."
	case ErrAnswerNotInOptions:
		return "The correct answer must be one of the four options."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
