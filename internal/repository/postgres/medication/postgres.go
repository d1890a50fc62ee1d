package medication

import (
	"context"
	"errors"
	"time"

	meddomain "maisafe-go/internal/domain/medication"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateMedication(ctx context.Context, m *meddomain.Medication) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PostgresRepository) GetOwnedMedication(ctx context.Context, id int64, patientID string) (*meddomain.Medication, error) {
	var m meddomain.Medication
	if err := r.db.WithContext(ctx).Where("id = ? AND patient_id = ?", id, patientID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, meddomain.ErrMedicationNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) ListMedicationsByPatient(ctx context.Context, patientID string) ([]meddomain.Medication, error) {
	var medications []meddomain.Medication
	if err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at asc").
		Find(&medications).Error; err != nil {
		return nil, err
	}
	return medications, nil
}

func (r *PostgresRepository) DeleteOwnedMedication(ctx context.Context, id int64, patientID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&meddomain.Medication{}, "id = ? AND patient_id = ?", id, patientID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) GetIntakeBySchedule(ctx context.Context, medicationID int64, scheduledTime time.Time) (*meddomain.IntakeHistory, error) {
	var intake meddomain.IntakeHistory
	if err := r.db.WithContext(ctx).
		Where("medication_id = ? AND scheduled_time = ?", medicationID, scheduledTime).
		First(&intake).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, meddomain.ErrIntakeNotFound
		}
		return nil, err
	}
	return &intake, nil
}

func (r *PostgresRepository) CreateIntake(ctx context.Context, intake *meddomain.IntakeHistory) error {
	return r.db.WithContext(ctx).Create(intake).Error
}

func (r *PostgresRepository) SaveIntake(ctx context.Context, intake *meddomain.IntakeHistory) error {
	return r.db.WithContext(ctx).Save(intake).Error
}

func (r *PostgresRepository) ListIntakesByPatient(ctx context.Context, patientID string) ([]meddomain.IntakeHistory, error) {
	var intakes []meddomain.IntakeHistory
	if err := r.db.WithContext(ctx).
		Joins("join medications on medications.id = intake_history.medication_id").
		Where("medications.patient_id = ?", patientID).
		Order("intake_history.scheduled_time desc").
		Find(&intakes).Error; err != nil {
		return nil, err
	}
	return intakes, nil
}
