package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	meddomain "maisafe-go/internal/domain/medication"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Push reconciles a batch of client changes in one transaction. Items apply
// in input order; the first failure rolls back the whole batch and reports
// the offending index. On success the caller's last_synced_time is advanced
// inside the same transaction.
func (s *Service) Push(ctx context.Context, patientID string, input PushInput) (*PushResult, error) {
	result := PushResult{
		Medications:   make([]IDMapping, 0, len(input.Medications)),
		IntakeHistory: make([]IDMapping, 0, len(input.IntakeHistory)),
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		for idx, change := range input.Medications {
			serverID, err := applyMedicationChange(ctx, tx, patientID, change)
			if err != nil {
				return &ItemError{List: ListMedications, Index: idx, Err: err}
			}
			result.Medications = append(result.Medications, IDMapping{ClientID: idx, ServerID: serverID})
		}

		for idx, change := range input.IntakeHistory {
			serverID, err := applyIntakeChange(ctx, tx, patientID, change)
			if err != nil {
				return &ItemError{List: ListIntakeHistory, Index: idx, Err: err}
			}
			result.IntakeHistory = append(result.IntakeHistory, IDMapping{ClientID: idx, ServerID: serverID})
		}

		return tx.TouchLastSynced(ctx, patientID, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Pull returns the caller's full dataset, or only rows updated after since.
func (s *Service) Pull(ctx context.Context, patientID string, since *time.Time) (*PullResult, error) {
	medications, err := s.repo.ListMedications(ctx, patientID, since)
	if err != nil {
		return nil, err
	}
	intakes, err := s.repo.ListIntakes(ctx, patientID, since)
	if err != nil {
		return nil, err
	}

	return &PullResult{Medications: medications, IntakeHistory: intakes}, nil
}

func applyMedicationChange(ctx context.Context, tx Repository, patientID string, change MedicationChange) (int64, error) {
	switch change.Action {
	case ActionUpdate:
		if change.ServerID == nil {
			return 0, fmt.Errorf("%w: cannot update medication without server_id", ErrInvalidItem)
		}
		if err := change.Input.Validate(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidItem, err)
		}

		m, err := tx.GetOwnedMedication(ctx, *change.ServerID, patientID)
		if err != nil {
			if errors.Is(err, meddomain.ErrMedicationNotFound) {
				return 0, fmt.Errorf("%w: medication %d", ErrNotFound, *change.ServerID)
			}
			return 0, err
		}

		if err := change.Input.Apply(m); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidItem, err)
		}
		if err := tx.SaveMedication(ctx, m); err != nil {
			return 0, err
		}
		return m.ID, nil

	case ActionCreate:
		if change.ServerID != nil {
			return 0, fmt.Errorf("%w: cannot create medication with existing server_id", ErrInvalidItem)
		}
		if err := change.Input.Validate(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidItem, err)
		}

		m := meddomain.Medication{PatientID: patientID}
		if err := change.Input.Apply(&m); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidItem, err)
		}
		if err := tx.CreateMedication(ctx, &m); err != nil {
			return 0, err
		}
		return m.ID, nil

	default:
		return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidItem, change.Action)
	}
}

func applyIntakeChange(ctx context.Context, tx Repository, patientID string, change IntakeChange) (int64, error) {
	if !meddomain.ValidStatus(change.Status) {
		return 0, fmt.Errorf("%w: invalid status %q", ErrInvalidItem, change.Status)
	}
	if change.TakenTime.IsZero() {
		return 0, fmt.Errorf("%w: taken_time is required", ErrInvalidItem)
	}

	if change.ServerID != nil {
		intake, err := tx.GetOwnedIntake(ctx, *change.ServerID, patientID)
		if err != nil {
			if errors.Is(err, meddomain.ErrIntakeNotFound) {
				return 0, fmt.Errorf("%w: intake %d", ErrNotFound, *change.ServerID)
			}
			return 0, err
		}

		intake.Status = change.Status
		intake.TakenTime = change.TakenTime
		intake.Notes = change.Notes
		if err := tx.SaveIntake(ctx, intake); err != nil {
			return 0, err
		}
		return intake.ID, nil
	}

	if change.MedicationServerID == 0 {
		return 0, fmt.Errorf("%w: medication_server_id is required", ErrInvalidItem)
	}
	if _, err := tx.GetOwnedMedication(ctx, change.MedicationServerID, patientID); err != nil {
		if errors.Is(err, meddomain.ErrMedicationNotFound) {
			return 0, fmt.Errorf("%w: medication %d", ErrNotFound, change.MedicationServerID)
		}
		return 0, err
	}

	scheduledTime := change.TakenTime
	if change.ScheduledTime != nil {
		scheduledTime = *change.ScheduledTime
	}

	intake := meddomain.IntakeHistory{
		MedicationID:  change.MedicationServerID,
		ScheduledTime: scheduledTime,
		TakenTime:     change.TakenTime,
		Status:        change.Status,
		Notes:         change.Notes,
	}
	if err := tx.CreateIntake(ctx, &intake); err != nil {
		return 0, err
	}
	return intake.ID, nil
}
