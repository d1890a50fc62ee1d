package friend

import "errors"

var (
	ErrAlreadyLinked        = errors.New("med-friend already has a patient")
	ErrInvalidCode          = errors.New("invalid invitation code")
	ErrCodeExpired          = errors.New("invitation code expired")
	ErrCodeUsed             = errors.New("invitation code already used")
	ErrSelfLink             = errors.New("cannot add yourself as med-friend")
	ErrPatientAlreadyLinked = errors.New("patient already has a med-friend")
	ErrFriendAlreadyLinked  = errors.New("med-friend already linked to another patient")
	ErrNoPatient            = errors.New("no patient assigned")
	ErrCodeGenerationFailed = errors.New("invitation code generation failed")

	// ErrRelationExists is returned by repositories when the relation insert
	// hits a uniqueness constraint; the service classifies which side lost.
	ErrRelationExists   = errors.New("relation already exists")
	ErrRelationNotFound = errors.New("relation not found")
)
