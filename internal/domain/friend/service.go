package friend

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	userdomain "maisafe-go/internal/domain/user"
	"github.com/google/uuid"
)

const codeAttempts = 10

type Users interface {
	GetByUUID(ctx context.Context, uuid string) (*userdomain.User, error)
}

type Service struct {
	repo    Repository
	users   Users
	codeTTL time.Duration
}

func NewService(repo Repository, users Users, codeTTL time.Duration) *Service {
	return &Service{repo: repo, users: users, codeTTL: codeTTL}
}

// CreateInvitation issues a short-lived single-use code for a med-friend who
// does not yet have a patient. Returns the code and its lifetime in seconds.
func (s *Service) CreateInvitation(ctx context.Context, medFriendID string) (string, int, error) {
	if _, err := s.repo.GetRelationByFriend(ctx, medFriendID); err == nil {
		return "", 0, ErrAlreadyLinked
	} else if !errors.Is(err, ErrRelationNotFound) {
		return "", 0, err
	}

	code, err := s.generateUniqueCode(ctx)
	if err != nil {
		return "", 0, err
	}

	invitation := InvitationCode{
		ID:          uuid.NewString(),
		Code:        code,
		MedFriendID: medFriendID,
		ExpiresAt:   time.Now().UTC().Add(s.codeTTL),
	}
	if err := s.repo.CreateInvitation(ctx, &invitation); err != nil {
		return "", 0, err
	}

	return code, int(s.codeTTL.Seconds()), nil
}

// Redeem links the calling patient to the code's issuer. The relation insert
// and the used-flag claim run in one transaction; the uniqueness constraints
// on friend_relations reject a losing concurrent writer.
func (s *Service) Redeem(ctx context.Context, patientID, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidCode
	}

	invitation, err := s.repo.GetInvitationByCode(ctx, code)
	if err != nil {
		return err
	}

	if time.Now().UTC().After(invitation.ExpiresAt) {
		if err := s.repo.DeleteInvitation(ctx, invitation.ID); err != nil {
			return err
		}
		return ErrCodeExpired
	}
	if invitation.Used {
		return ErrCodeUsed
	}
	if invitation.MedFriendID == patientID {
		return ErrSelfLink
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetRelationByPatient(ctx, patientID); err == nil {
			return ErrPatientAlreadyLinked
		} else if !errors.Is(err, ErrRelationNotFound) {
			return err
		}
		if _, err := tx.GetRelationByFriend(ctx, invitation.MedFriendID); err == nil {
			return ErrFriendAlreadyLinked
		} else if !errors.Is(err, ErrRelationNotFound) {
			return err
		}

		claimed, err := tx.ClaimInvitation(ctx, invitation.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrCodeUsed
		}

		return tx.CreateRelation(ctx, &Relation{
			PatientID:   patientID,
			MedFriendID: invitation.MedFriendID,
		})
	})
	if errors.Is(err, ErrRelationExists) {
		// Constraint backstop fired; classify the losing side outside the
		// aborted transaction.
		if _, lookupErr := s.repo.GetRelationByPatient(ctx, patientID); lookupErr == nil {
			return ErrPatientAlreadyLinked
		}
		return ErrFriendAlreadyLinked
	}
	return err
}

// RemoveForPatient clears the patient's relation. Clearing an already
// unlinked patient is a no-op reported via the returned flag.
func (s *Service) RemoveForPatient(ctx context.Context, patientID string) (bool, error) {
	return s.repo.DeleteRelationByPatient(ctx, patientID)
}

// UnsubscribeFromPatient clears the relation from the med-friend side.
func (s *Service) UnsubscribeFromPatient(ctx context.Context, medFriendID string) error {
	deleted, err := s.repo.DeleteRelationByFriend(ctx, medFriendID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNoPatient
	}
	return nil
}

func (s *Service) GetMedFriend(ctx context.Context, patientID string) (*PartnerInfo, error) {
	relation, err := s.repo.GetRelationByPatient(ctx, patientID)
	if errors.Is(err, ErrRelationNotFound) {
		return &PartnerInfo{Message: "no med-friend assigned"}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.partnerInfo(ctx, relation.MedFriendID, "assigned med-friend no longer exists")
}

func (s *Service) GetPatient(ctx context.Context, medFriendID string) (*PartnerInfo, error) {
	relation, err := s.repo.GetRelationByFriend(ctx, medFriendID)
	if errors.Is(err, ErrRelationNotFound) {
		return &PartnerInfo{Message: "no patient assigned"}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.partnerInfo(ctx, relation.PatientID, "assigned patient no longer exists")
}

// PatientIDForFriend resolves which patient the med-friend may read.
func (s *Service) PatientIDForFriend(ctx context.Context, medFriendID string) (string, error) {
	relation, err := s.repo.GetRelationByFriend(ctx, medFriendID)
	if errors.Is(err, ErrRelationNotFound) {
		return "", ErrNoPatient
	}
	if err != nil {
		return "", err
	}
	return relation.PatientID, nil
}

func (s *Service) partnerInfo(ctx context.Context, partnerID, missingMessage string) (*PartnerInfo, error) {
	partner, err := s.users.GetByUUID(ctx, partnerID)
	if errors.Is(err, userdomain.ErrUserNotFound) {
		return &PartnerInfo{Message: missingMessage}, nil
	}
	if err != nil {
		return nil, err
	}
	return &PartnerInfo{UUID: &partner.UUID, Username: &partner.Username}, nil
}

func (s *Service) generateUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		taken, err := s.repo.IsCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
