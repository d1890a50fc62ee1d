package friend

import (
	"context"
	"errors"
	"testing"
	"time"

	userdomain "maisafe-go/internal/domain/user"
)

type fakeFriendRepo struct {
	invitations map[string]*InvitationCode
	byPatient   map[string]*Relation
	byFriend    map[string]*Relation
}

func newFakeFriendRepo() *fakeFriendRepo {
	return &fakeFriendRepo{
		invitations: make(map[string]*InvitationCode),
		byPatient:   make(map[string]*Relation),
		byFriend:    make(map[string]*Relation),
	}
}

func (r *fakeFriendRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeFriendRepo) GetInvitationByCode(ctx context.Context, code string) (*InvitationCode, error) {
	for _, invitation := range r.invitations {
		if invitation.Code == code {
			copied := *invitation
			return &copied, nil
		}
	}
	return nil, ErrInvalidCode
}

func (r *fakeFriendRepo) CreateInvitation(ctx context.Context, invitation *InvitationCode) error {
	r.invitations[invitation.ID] = invitation
	return nil
}

func (r *fakeFriendRepo) DeleteInvitation(ctx context.Context, id string) error {
	delete(r.invitations, id)
	return nil
}

func (r *fakeFriendRepo) ClaimInvitation(ctx context.Context, id string) (bool, error) {
	invitation, ok := r.invitations[id]
	if !ok || invitation.Used {
		return false, nil
	}
	invitation.Used = true
	return true, nil
}

func (r *fakeFriendRepo) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	for _, invitation := range r.invitations {
		if invitation.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFriendRepo) CreateRelation(ctx context.Context, relation *Relation) error {
	if _, ok := r.byPatient[relation.PatientID]; ok {
		return ErrRelationExists
	}
	if _, ok := r.byFriend[relation.MedFriendID]; ok {
		return ErrRelationExists
	}
	r.byPatient[relation.PatientID] = relation
	r.byFriend[relation.MedFriendID] = relation
	return nil
}

func (r *fakeFriendRepo) GetRelationByPatient(ctx context.Context, patientID string) (*Relation, error) {
	relation, ok := r.byPatient[patientID]
	if !ok {
		return nil, ErrRelationNotFound
	}
	return relation, nil
}

func (r *fakeFriendRepo) GetRelationByFriend(ctx context.Context, medFriendID string) (*Relation, error) {
	relation, ok := r.byFriend[medFriendID]
	if !ok {
		return nil, ErrRelationNotFound
	}
	return relation, nil
}

func (r *fakeFriendRepo) DeleteRelationByPatient(ctx context.Context, patientID string) (bool, error) {
	relation, ok := r.byPatient[patientID]
	if !ok {
		return false, nil
	}
	delete(r.byPatient, patientID)
	delete(r.byFriend, relation.MedFriendID)
	return true, nil
}

func (r *fakeFriendRepo) DeleteRelationByFriend(ctx context.Context, medFriendID string) (bool, error) {
	relation, ok := r.byFriend[medFriendID]
	if !ok {
		return false, nil
	}
	delete(r.byFriend, medFriendID)
	delete(r.byPatient, relation.PatientID)
	return true, nil
}

type fakeUsers struct {
	users map[string]*userdomain.User
}

func newFakeUsers(uuids ...string) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*userdomain.User)}
	for _, id := range uuids {
		f.users[id] = &userdomain.User{UUID: id, Username: "user-" + id}
	}
	return f
}

func (f *fakeUsers) GetByUUID(ctx context.Context, uuid string) (*userdomain.User, error) {
	account, ok := f.users[uuid]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	return account, nil
}

func TestCreateInvitationAndRedeem(t *testing.T) {
	repo := newFakeFriendRepo()
	svc := NewService(repo, newFakeUsers("patient", "buddy"), 180*time.Second)

	code, ttl, err := svc.CreateInvitation(context.Background(), "buddy")
	if err != nil {
		t.Fatalf("create invitation failed: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	if ttl != 180 {
		t.Fatalf("expected ttl 180, got %d", ttl)
	}

	if err := svc.Redeem(context.Background(), "patient", code); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	info, err := svc.GetMedFriend(context.Background(), "patient")
	if err != nil {
		t.Fatalf("get med-friend failed: %v", err)
	}
	if info.UUID == nil || *info.UUID != "buddy" {
		t.Fatalf("expected med-friend buddy, got %+v", info)
	}

	patientID, err := svc.PatientIDForFriend(context.Background(), "buddy")
	if err != nil {
		t.Fatalf("patient lookup failed: %v", err)
	}
	if patientID != "patient" {
		t.Fatalf("expected patient, got %s", patientID)
	}
}

func TestCreateInvitationRejectsLinkedFriend(t *testing.T) {
	repo := newFakeFriendRepo()
	svc := NewService(repo, newFakeUsers("patient", "buddy"), time.Minute)

	code, _, err := svc.CreateInvitation(context.Background(), "buddy")
	if err != nil {
		t.Fatalf("create invitation failed: %v", err)
	}
	if err := svc.Redeem(context.Background(), "patient", code); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	if _, _, err := svc.CreateInvitation(context.Background(), "buddy"); !errors.Is(err, ErrAlreadyLinked) {
		t.Fatalf("expected ErrAlreadyLinked, got %v", err)
	}
}

func TestRedeemUnknownCode(t *testing.T) {
	svc := NewService(newFakeFriendRepo(), newFakeUsers(), time.Minute)

	if err := svc.Redeem(context.Background(), "patient", "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
}

func TestRedeemExpiredCodeIsDeleted(t *testing.T) {
	repo := newFakeFriendRepo()
	svc := NewService(repo, newFakeUsers("patient", "buddy"), -time.Second)

	code, _, err := svc.CreateInvitation(context.Background(), "buddy")
	if err != nil {
		t.Fatalf("create invitation failed: %v", err)
	}

	if err := svc.Redeem(context.Background(), "patient", code); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
	// Expired code is purged; a second attempt no longer finds it.
	if err := svc.Redeem(context.Background(), "patient", code); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode after expiry purge, got %v", err)
	}
}

func TestRedeemSelfLink(t *testing.T) {
	repo := newFakeFriendRepo()
	svc := NewService(repo, newFakeUsers("buddy"), time.Minute)

	code, _, err := svc.CreateInvitation(context.Background(), "buddy")
	if err != nil {
		t.Fatalf("create invitation failed: %v", err)
	}
	if err := svc.Redeem(context.Background(), "buddy", code); !errors.Is(err, ErrSelfLink) {
		t.Fatalf("expected ErrSelfLink, got %v", err)
	}
}

func TestRedeemUsedCode(t *testing.T) {
	repo := newFakeFriendRepo()
	svc := NewService(repo, newFakeUsers("patient", "other", "buddy"), time.Minute)

	code, _, err := svc.CreateInvitation(context.Background(), "buddy")
	if err != nil {
		t.Fatalf("create invitation failed: %v", err)
	}
	if err := svc.Redeem(context.Background(), "patient", code); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	if err := svc.Redeem(context.Background(), "other", code); !errors.Is(err, ErrCodeUsed) {
		t.Fatalf("expected ErrCodeUsed, got %v", err)
	}
}

func TestRedeemPatientAlreadyLinked(t *testing.T) {
	repo := newFakeFriendRepo()
	svc := NewService(repo, newFakeUsers("patient", "buddy", "second"), time.Minute)

	code, _, err := svc.CreateInvitation(context.Background(), "buddy")
	if err != nil {
		t.Fatalf("create invitation failed: %v", err)
	}
	if err := svc.Redeem(context.Background(), "patient", code); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	code2, _, err := svc.CreateInvitation(context.Background(), "second")
	if err != nil {
		t.Fatalf("second invitation failed: %v", err)
	}
	if err := svc.Redeem(context.Background(), "patient", code2); !errors.Is(err, ErrPatientAlreadyLinked) {
		t.Fatalf("expected ErrPatientAlreadyLinked, got %v", err)
	}
}

func TestRedeemFriendAlreadyLinked(t *testing.T) {
	repo := newFakeFriendRepo()
	svc := NewService(repo, newFakeUsers("patient", "other", "buddy"), time.Minute)

	// Two live codes issued before the friend gets linked; the second turns
	// stale once the first is redeemed.
	code1, _, err := svc.CreateInvitation(context.Background(), "buddy")
	if err != nil {
		t.Fatalf("first invitation failed: %v", err)
	}
	code2, _, err := svc.CreateInvitation(context.Background(), "buddy")
	if err != nil {
		t.Fatalf("second invitation failed: %v", err)
	}

	if err := svc.Redeem(context.Background(), "patient", code1); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	if err := svc.Redeem(context.Background(), "other", code2); !errors.Is(err, ErrFriendAlreadyLinked) {
		t.Fatalf("expected ErrFriendAlreadyLinked, got %v", err)
	}
}

// racingRelationRepo simulates a concurrent redeemer winning the relation
// insert: the preconditions pass but CreateRelation hits the uniqueness
// constraint. With patientWins the rival claimed the patient side.
type racingRelationRepo struct {
	*fakeFriendRepo
	patientWins bool
}

func (r *racingRelationRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *racingRelationRepo) CreateRelation(ctx context.Context, relation *Relation) error {
	if r.patientWins {
		r.byPatient[relation.PatientID] = &Relation{PatientID: relation.PatientID, MedFriendID: "rival"}
	}
	return ErrRelationExists
}

func TestRedeemClassifiesConstraintConflict(t *testing.T) {
	cases := []struct {
		name        string
		patientWins bool
		want        error
	}{
		{name: "patient side taken", patientWins: true, want: ErrPatientAlreadyLinked},
		{name: "friend side taken", patientWins: false, want: ErrFriendAlreadyLinked},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &racingRelationRepo{fakeFriendRepo: newFakeFriendRepo(), patientWins: tc.patientWins}
			svc := NewService(repo, newFakeUsers("patient", "buddy"), time.Minute)

			code, _, err := svc.CreateInvitation(context.Background(), "buddy")
			if err != nil {
				t.Fatalf("create invitation failed: %v", err)
			}

			if err := svc.Redeem(context.Background(), "patient", code); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUnlinkBothSides(t *testing.T) {
	repo := newFakeFriendRepo()
	svc := NewService(repo, newFakeUsers("patient", "buddy"), time.Minute)

	code, _, err := svc.CreateInvitation(context.Background(), "buddy")
	if err != nil {
		t.Fatalf("create invitation failed: %v", err)
	}
	if err := svc.Redeem(context.Background(), "patient", code); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	removed, err := svc.RemoveForPatient(context.Background(), "patient")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if !removed {
		t.Fatal("expected relation to be removed")
	}

	// Removing again is a no-op, not an error.
	removed, err = svc.RemoveForPatient(context.Background(), "patient")
	if err != nil {
		t.Fatalf("second remove errored: %v", err)
	}
	if removed {
		t.Fatal("expected nothing to remove")
	}

	// Friend side now has no patient.
	if err := svc.UnsubscribeFromPatient(context.Background(), "buddy"); !errors.Is(err, ErrNoPatient) {
		t.Fatalf("expected ErrNoPatient, got %v", err)
	}
}

func TestGetMedFriendUnassigned(t *testing.T) {
	svc := NewService(newFakeFriendRepo(), newFakeUsers("patient"), time.Minute)

	info, err := svc.GetMedFriend(context.Background(), "patient")
	if err != nil {
		t.Fatalf("get med-friend failed: %v", err)
	}
	if info.UUID != nil || info.Message == "" {
		t.Fatalf("expected unassigned info, got %+v", info)
	}
}
