package friend

import "time"

type InvitationCode struct {
	ID          string    `gorm:"primaryKey"`
	Code        string    `gorm:"size:6;not null;uniqueIndex"`
	MedFriendID string    `gorm:"not null;index"`
	ExpiresAt   time.Time `gorm:"not null"`
	Used        bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (InvitationCode) TableName() string {
	return "invitation_codes"
}

// Relation links one patient to one med-friend. Uniqueness on both columns
// keeps the link graph a matching.
type Relation struct {
	PatientID   string    `gorm:"primaryKey;column:patient_id"`
	MedFriendID string    `gorm:"not null;uniqueIndex;column:med_friend_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Relation) TableName() string {
	return "friend_relations"
}

// PartnerInfo describes the other side of a relation, or why there is none.
type PartnerInfo struct {
	UUID     *string
	Username *string
	Message  string
}
