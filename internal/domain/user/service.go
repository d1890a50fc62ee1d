package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const credentialBytes = 12

type Service struct {
	repo       Repository
	bcryptCost int
}

func NewService(repo Repository, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

// Register creates an account and returns the generated credential. The raw
// credential is never stored and cannot be recovered later.
func (s *Service) Register(ctx context.Context, username string) (*User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", fmt.Errorf("username is required")
	}

	rawPassword, err := generateCredential()
	if err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	account := User{
		UUID:         uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, &account); err != nil {
		return nil, "", err
	}

	return &account, rawPassword, nil
}

// Authenticate verifies a uuid/credential pair. Unknown uuid and wrong
// credential are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, userUUID, password string) (*User, error) {
	account, err := s.repo.GetByUUID(ctx, userUUID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

func (s *Service) GetByUUID(ctx context.Context, userUUID string) (*User, error) {
	return s.repo.GetByUUID(ctx, userUUID)
}

func generateCredential() (string, error) {
	var b [credentialBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
