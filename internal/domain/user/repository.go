package user

import "context"

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByUUID(ctx context.Context, uuid string) (*User, error)
}
