package domain

import "errors"

type ErrorCode string

const (
	CodeInvalidJSON      ErrorCode = "INVALID_JSON"
	CodeInvalidGame      ErrorCode = "INVALID_GAME"
	CodeInvalidMode      ErrorCode = "INVALID_MODE"
	CodeInvalidLevel     ErrorCode = "INVALID_LEVEL"
	CodeNameRequired     ErrorCode = "NAME_REQUIRED"
	CodeScoreRequired    ErrorCode = "SCORE_REQUIRED"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeOriginNotAllowed ErrorCode = "ORIGIN_NOT_ALLOWED"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// ValidationError is a client input error. It always maps to a 400.
type ValidationError struct {
	Code ErrorCode
}

func (e *ValidationError) Error() string {
	return "validation failed: " + string(e.Code)
}

func invalid(code ErrorCode) error {
	return &ValidationError{Code: code}
}

var (
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrStoreNotConfigured = errors.New("leaderboard store not configured")
	ErrAppendConflict     = errors.New("concurrent leaderboard update")
)

// CodeOf returns the validation code carried by err, if any.
func CodeOf(err error) (ErrorCode, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code, true
	}
	return "", false
}
