package sync

import (
	"context"
	"time"

	meddomain "maisafe-go/internal/domain/medication"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	GetOwnedMedication(ctx context.Context, id int64, patientID string) (*meddomain.Medication, error)
	CreateMedication(ctx context.Context, m *meddomain.Medication) error
	SaveMedication(ctx context.Context, m *meddomain.Medication) error

	GetOwnedIntake(ctx context.Context, id int64, patientID string) (*meddomain.IntakeHistory, error)
	CreateIntake(ctx context.Context, intake *meddomain.IntakeHistory) error
	SaveIntake(ctx context.Context, intake *meddomain.IntakeHistory) error

	ListMedications(ctx context.Context, patientID string, since *time.Time) ([]meddomain.Medication, error)
	ListIntakes(ctx context.Context, patientID string, since *time.Time) ([]meddomain.IntakeHistory, error)

	TouchLastSynced(ctx context.Context, patientID string, at time.Time) error
}
