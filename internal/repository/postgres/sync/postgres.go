package sync

import (
	"context"
	"errors"
	"time"

	meddomain "maisafe-go/internal/domain/medication"
	syncdomain "maisafe-go/internal/domain/sync"
	userdomain "maisafe-go/internal/domain/user"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(syncdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
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

func (r *PostgresRepository) CreateMedication(ctx context.Context, m *meddomain.Medication) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PostgresRepository) SaveMedication(ctx context.Context, m *meddomain.Medication) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// GetOwnedIntake joins through medications so ownership follows the parent row.
func (r *PostgresRepository) GetOwnedIntake(ctx context.Context, id int64, patientID string) (*meddomain.IntakeHistory, error) {
	var intake meddomain.IntakeHistory
	err := r.db.WithContext(ctx).
		Joins("join medications on medications.id = intake_history.medication_id").
		Where("intake_history.id = ? AND medications.patient_id = ?", id, patientID).
		First(&intake).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, meddomain.ErrIntakeNotFound
	}
	if err != nil {
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

func (r *PostgresRepository) ListMedications(ctx context.Context, patientID string, since *time.Time) ([]meddomain.Medication, error) {
	query := r.db.WithContext(ctx).Where("patient_id = ?", patientID)
	if since != nil {
		query = query.Where("updated_at > ?", *since)
	}

	var medications []meddomain.Medication
	if err := query.Order("id asc").Find(&medications).Error; err != nil {
		return nil, err
	}
	return medications, nil
}

func (r *PostgresRepository) ListIntakes(ctx context.Context, patientID string, since *time.Time) ([]meddomain.IntakeHistory, error) {
	query := r.db.WithContext(ctx).
		Joins("join medications on medications.id = intake_history.medication_id").
		Where("medications.patient_id = ?", patientID)
	if since != nil {
		query = query.Where("intake_history.updated_at > ?", *since)
	}

	var intakes []meddomain.IntakeHistory
	if err := query.Order("intake_history.id asc").Find(&intakes).Error; err != nil {
		return nil, err
	}
	return intakes, nil
}

func (r *PostgresRepository) TouchLastSynced(ctx context.Context, patientID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&userdomain.User{}).
		Where("uuid = ?", patientID).
		Update("last_synced_time", at).Error
}
