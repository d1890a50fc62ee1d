package medication

import "errors"

var (
	ErrMedicationNotFound = errors.New("medication not found")
	ErrIntakeNotFound     = errors.New("intake record not found")
)
