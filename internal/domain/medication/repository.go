package medication

import (
	"context"
	"time"
)

// Repository lookups that mutate or read a single row always carry the owner
// predicate, so an unowned id is indistinguishable from a missing one.
type Repository interface {
	CreateMedication(ctx context.Context, m *Medication) error
	GetOwnedMedication(ctx context.Context, id int64, patientID string) (*Medication, error)
	ListMedicationsByPatient(ctx context.Context, patientID string) ([]Medication, error)
	DeleteOwnedMedication(ctx context.Context, id int64, patientID string) (bool, error)

	GetIntakeBySchedule(ctx context.Context, medicationID int64, scheduledTime time.Time) (*IntakeHistory, error)
	CreateIntake(ctx context.Context, intake *IntakeHistory) error
	SaveIntake(ctx context.Context, intake *IntakeHistory) error
	ListIntakesByPatient(ctx context.Context, patientID string) ([]IntakeHistory, error)
}
