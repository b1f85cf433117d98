package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated       = errors.New("authentication required")
	ErrForbidden             = errors.New("forbidden")
	ErrChallengeNotFound     = errors.New("challenge not found")
	ErrChallengeNotOpen      = errors.New("challenge is not open for participation")
	ErrUserChallengeNotFound = errors.New("user challenge not found")
	ErrChallengeNotActive    = errors.New("challenge is no longer active")
	ErrChallengeNotCompleted = errors.New("final results can only be recorded after the challenge is completed")
	ErrNoTaskForDay          = errors.New("no task scheduled for the current day")
	ErrDayAlreadyCompleted   = errors.New("day already completed")
	ErrInvalidStatusChange   = errors.New("invalid challenge status transition")
	ErrDraftNotFound         = errors.New("challenge draft not found")
	ErrRowIndexOutOfRange    = errors.New("row index out of range")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrAlreadyJoined         = errors.New("challenge already joined")
	ErrValidation            = errors.New("validation failed")
)

// AlreadyJoinedError reports a duplicate join together with the existing participation.
type AlreadyJoinedError struct {
	UserChallengeID string
}

func (e *AlreadyJoinedError) Error() string {
	return ErrAlreadyJoined.Error()
}

func (e *AlreadyJoinedError) Is(target error) bool {
	return target == ErrAlreadyJoined
}

// Validation codes carried by FieldError.Code.
const (
	CodeRequired    = "required"
	CodeNumber      = "number"
	CodeString      = "string"
	CodeMin         = "min"
	CodeMax         = "max"
	CodeMinLength   = "min_length"
	CodeMaxLength   = "max_length"
	CodeURL         = "url"
	CodeDate        = "date"
	CodeOneOf       = "oneof"
	CodeUnique      = "unique"
	CodeLteDuration = "lte_duration"
	CodeInvalid     = "invalid"
	CodeMissingDays = "missing_days"
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// FieldErrors is returned whenever form values fail validation. It matches ErrValidation.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Code))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (fe FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the names of all failing fields, in order.
func (fe FieldErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	for _, e := range fe {
		out = append(out, e.Field)
	}
	return out
}
