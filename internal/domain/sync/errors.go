package sync

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidItem = errors.New("invalid sync item")
	ErrNotFound    = errors.New("referenced entity not found or not owned")
)

const (
	ListMedications   = "medications"
	ListIntakeHistory = "intake_history"
)

// ItemError reports which batch item aborted the push. The wrapped error
// stays reachable through errors.Is.
type ItemError struct {
	List  string
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.List, e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
