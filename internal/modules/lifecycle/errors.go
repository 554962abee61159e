package lifecycle

import "errors"

var (
	ErrNotFound           = errors.New("request not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrValidation         = errors.New("validation error")
	ErrConflictRetry      = errors.New("write conflict, re-read and retry")
)
