package friend

import (
	"context"
	"errors"

	frienddomain "maisafe-go/internal/domain/friend"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(frienddomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetInvitationByCode(ctx context.Context, code string) (*frienddomain.InvitationCode, error) {
	var invitation frienddomain.InvitationCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, frienddomain.ErrInvalidCode
		}
		return nil, err
	}
	return &invitation, nil
}

func (r *PostgresRepository) CreateInvitation(ctx context.Context, invitation *frienddomain.InvitationCode) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *PostgresRepository) DeleteInvitation(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&frienddomain.InvitationCode{}, "id = ?", id).Error
}

// ClaimInvitation flips used only when it is still false, so exactly one of
// two concurrent redeemers wins.
func (r *PostgresRepository) ClaimInvitation(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&frienddomain.InvitationCode{}).
		Where("id = ? AND used = false", id).
		Update("used", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&frienddomain.InvitationCode{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreateRelation(ctx context.Context, relation *frienddomain.Relation) error {
	if err := r.db.WithContext(ctx).Create(relation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return frienddomain.ErrRelationExists
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) GetRelationByPatient(ctx context.Context, patientID string) (*frienddomain.Relation, error) {
	var relation frienddomain.Relation
	if err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).First(&relation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, frienddomain.ErrRelationNotFound
		}
		return nil, err
	}
	return &relation, nil
}

func (r *PostgresRepository) GetRelationByFriend(ctx context.Context, medFriendID string) (*frienddomain.Relation, error) {
	var relation frienddomain.Relation
	if err := r.db.WithContext(ctx).Where("med_friend_id = ?", medFriendID).First(&relation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, frienddomain.ErrRelationNotFound
		}
		return nil, err
	}
	return &relation, nil
}

func (r *PostgresRepository) DeleteRelationByPatient(ctx context.Context, patientID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&frienddomain.Relation{}, "patient_id = ?", patientID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) DeleteRelationByFriend(ctx context.Context, medFriendID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&frienddomain.Relation{}, "med_friend_id = ?", medFriendID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
