package medication

import (
	"context"
	"errors"
	"fmt"
)

// PatientResolver tells which patient a med-friend is allowed to read.
type PatientResolver interface {
	PatientIDForFriend(ctx context.Context, medFriendID string) (string, error)
}

type Service struct {
	repo     Repository
	patients PatientResolver
}

func NewService(repo Repository, patients PatientResolver) *Service {
	return &Service{repo: repo, patients: patients}
}

func (s *Service) AddMedication(ctx context.Context, patientID string, input MedicationInput) (*Medication, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	m := Medication{PatientID: patientID}
	if err := input.Apply(&m); err != nil {
		return nil, err
	}
	if err := s.repo.CreateMedication(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]Medication, error) {
	return s.repo.ListMedicationsByPatient(ctx, patientID)
}

// ListForFriend returns the linked patient's medications. Friends get read
// access only; every mutating operation stays patient-scoped.
func (s *Service) ListForFriend(ctx context.Context, medFriendID string) ([]Medication, error) {
	patientID, err := s.patients.PatientIDForFriend(ctx, medFriendID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMedicationsByPatient(ctx, patientID)
}

func (s *Service) DeleteMedication(ctx context.Context, patientID string, id int64) error {
	deleted, err := s.repo.DeleteOwnedMedication(ctx, id, patientID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMedicationNotFound
	}
	return nil
}

// RecordIntake creates or updates the canonical intake row for
// (medication, scheduled_time). The ownership check and the write share the
// owner-scoped lookup.
func (s *Service) RecordIntake(ctx context.Context, patientID string, input IntakeInput) (*IntakeHistory, error) {
	if !ValidStatus(input.Status) {
		return nil, fmt.Errorf("invalid status %q", input.Status)
	}
	if input.ScheduledTime.IsZero() {
		return nil, fmt.Errorf("scheduled_time is required")
	}

	if _, err := s.repo.GetOwnedMedication(ctx, input.MedicationID, patientID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetIntakeBySchedule(ctx, input.MedicationID, input.ScheduledTime)
	if err != nil && !errors.Is(err, ErrIntakeNotFound) {
		return nil, err
	}

	if existing != nil {
		existing.Status = input.Status
		if input.TakenTime != nil {
			existing.TakenTime = *input.TakenTime
		}
		if input.Notes != nil {
			existing.Notes = input.Notes
		}
		if err := s.repo.SaveIntake(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	takenTime := input.ScheduledTime
	if input.TakenTime != nil {
		takenTime = *input.TakenTime
	}
	intake := IntakeHistory{
		MedicationID:  input.MedicationID,
		ScheduledTime: input.ScheduledTime,
		TakenTime:     takenTime,
		Status:        input.Status,
		Notes:         input.Notes,
	}
	if err := s.repo.CreateIntake(ctx, &intake); err != nil {
		return nil, err
	}
	return &intake, nil
}

func (s *Service) ListIntakesForPatient(ctx context.Context, patientID string) ([]IntakeHistory, error) {
	return s.repo.ListIntakesByPatient(ctx, patientID)
}

func (s *Service) ListIntakesForFriend(ctx context.Context, medFriendID string) ([]IntakeHistory, error) {
	patientID, err := s.patients.PatientIDForFriend(ctx, medFriendID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListIntakesByPatient(ctx, patientID)
}
