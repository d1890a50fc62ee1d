package user

import (
	"context"
	"errors"

	userdomain "maisafe-go/internal/domain/user"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *userdomain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return userdomain.ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) GetByUUID(ctx context.Context, uuid string) (*userdomain.User, error) {
	var u userdomain.User
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userdomain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
