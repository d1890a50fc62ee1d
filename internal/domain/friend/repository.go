package friend

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	GetInvitationByCode(ctx context.Context, code string) (*InvitationCode, error)
	CreateInvitation(ctx context.Context, invitation *InvitationCode) error
	DeleteInvitation(ctx context.Context, id string) error
	// ClaimInvitation flips the used flag with a conditional update and
	// reports whether this caller won the claim.
	ClaimInvitation(ctx context.Context, id string) (bool, error)
	IsCodeTaken(ctx context.Context, code string) (bool, error)

	CreateRelation(ctx context.Context, relation *Relation) error
	GetRelationByPatient(ctx context.Context, patientID string) (*Relation, error)
	GetRelationByFriend(ctx context.Context, medFriendID string) (*Relation, error)
	DeleteRelationByPatient(ctx context.Context, patientID string) (bool, error)
	DeleteRelationByFriend(ctx context.Context, medFriendID string) (bool, error)
}
