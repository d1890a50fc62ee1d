package cleanup

import (
	"context"
	"time"

	"maisafe-go/internal/cleanup"
	frienddomain "maisafe-go/internal/domain/friend"
	meddomain "maisafe-go/internal/domain/medication"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Sweep deletes used or expired invitation codes and rows last touched before
// the retention cutoff. Intake rows under a deleted medication go with it via
// the cascade, stale rows under live medications are removed explicitly.
func (r *PostgresRepository) Sweep(ctx context.Context, now time.Time, retention time.Duration) (cleanup.SweepResult, error) {
	var result cleanup.SweepResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		codes := tx.Where("used = true OR expires_at < ?", now).Delete(&frienddomain.InvitationCode{})
		if codes.Error != nil {
			return codes.Error
		}
		result.CodesDeleted = codes.RowsAffected

		if retention <= 0 {
			return nil
		}
		cutoff := now.Add(-retention)

		medications := tx.Where("updated_at < ?", cutoff).Delete(&meddomain.Medication{})
		if medications.Error != nil {
			return medications.Error
		}
		result.MedicationsDeleted = medications.RowsAffected

		intakes := tx.Where("updated_at < ?", cutoff).Delete(&meddomain.IntakeHistory{})
		if intakes.Error != nil {
			return intakes.Error
		}
		result.IntakesDeleted = intakes.RowsAffected

		return nil
	})
	if err != nil {
		return cleanup.SweepResult{}, err
	}

	return result, nil
}
