package service

import "errors"

// Business-rule errors surfaced to handlers. Data-layer conditions
// (duplicates, missing rows) keep their repository sentinels.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrExamNumberExhausted  = errors.New("could not allocate a unique exam number")
	ErrNoQuestionsAvailable = errors.New("no questions available for the exam")
	ErrExamAlreadyCompleted = errors.New("exam has already been submitted")
	ErrNotResultOwner       = errors.New("result belongs to another user")
	ErrAnswerNotInOptions   = errors.New("correct answer is not one of the options")
)
