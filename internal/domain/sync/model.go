package sync

import (
	"time"

	meddomain "maisafe-go/internal/domain/medication"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
)

// MedicationChange is one client-asserted medication mutation. ServerID must
// be absent on create and present on update.
type MedicationChange struct {
	ServerID *int64
	Action   string
	Input    meddomain.MedicationInput
}

// IntakeChange is one client-asserted intake mutation. With no ServerID a new
// row is inserted under MedicationServerID; ScheduledTime defaults to
// TakenTime when the client does not supply it separately.
type IntakeChange struct {
	ServerID           *int64
	MedicationServerID int64
	Status             string
	TakenTime          time.Time
	ScheduledTime      *time.Time
	Notes              *string
}

type PushInput struct {
	Medications   []MedicationChange
	IntakeHistory []IntakeChange
}

// IDMapping pairs an item's position in the pushed batch with the server
// identifier the client must echo back on later syncs.
type IDMapping struct {
	ClientID int   `json:"client_id"`
	ServerID int64 `json:"server_id"`
}

type PushResult struct {
	Medications   []IDMapping
	IntakeHistory []IDMapping
}

type PullResult struct {
	Medications   []meddomain.Medication
	IntakeHistory []meddomain.IntakeHistory
}
