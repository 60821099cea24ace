package flow

import (
	"errors"
	"fmt"

	sessionRepo "saubio/database/repository/session"
)

var (
	ErrSessionNotFound = sessionRepo.ErrSessionNotFound
	ErrVersionConflict = sessionRepo.ErrVersionConflict
	ErrForbidden       = errors.New("flow session belongs to another user")
)

// FlowError is returned for invalid session input.
type FlowError struct {
	Code    string
	Message string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newInvalidInput(msg string) error {
	return &FlowError{Code: "invalidInput", Message: msg}
}
