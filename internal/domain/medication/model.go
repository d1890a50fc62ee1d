package medication

import (
	"fmt"
	"strings"
	"time"
)

const (
	FormTablet = "tablet"
	FormDrop   = "drop"
	FormSpray  = "spray"
	FormOther  = "other"
)

const (
	ScheduleDaily      = "daily"
	ScheduleWeeklyDays = "weekly_days"
	ScheduleEveryXDays = "every_x_days"
)

const (
	StatusTaken   = "taken"
	StatusSkipped = "skipped"
)

type Medication struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	PatientID    string  `gorm:"not null;index"`
	Name         string  `gorm:"not null"`
	Form         string  `gorm:"not null"`
	Instructions *string
	StartDate    time.Time  `gorm:"type:date;not null"`
	EndDate      *time.Time `gorm:"type:date"`
	ScheduleType string     `gorm:"not null"`
	WeekDays     []int      `gorm:"serializer:json;type:jsonb"`
	IntervalDays *int
	TimesPerDay  []string  `gorm:"serializer:json;type:jsonb;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Medication) TableName() string {
	return "medications"
}

type IntakeHistory struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	MedicationID  int64     `gorm:"not null;index"`
	ScheduledTime time.Time `gorm:"not null"`
	TakenTime     time.Time `gorm:"not null"`
	Status        string    `gorm:"not null"`
	Notes         *string
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (IntakeHistory) TableName() string {
	return "intake_history"
}

// MedicationInput carries the full mutable field set of a medication, as
// supplied by clients on create, update and sync push.
type MedicationInput struct {
	Name         string
	Form         string
	Instructions *string
	StartDate    time.Time
	EndDate      *time.Time
	ScheduleType string
	WeekDays     []int
	IntervalDays *int
	TimesPerDay  []string
}

func (in MedicationInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !ValidForm(in.Form) {
		return fmt.Errorf("invalid form %q", in.Form)
	}
	if in.StartDate.IsZero() {
		return fmt.Errorf("start_date is required")
	}
	if !ValidScheduleType(in.ScheduleType) {
		return fmt.Errorf("invalid schedule_type %q", in.ScheduleType)
	}
	if in.ScheduleType == ScheduleWeeklyDays {
		if len(in.WeekDays) == 0 {
			return fmt.Errorf("week_days are required for schedule_type %s", ScheduleWeeklyDays)
		}
		for _, day := range in.WeekDays {
			if day < 1 || day > 7 {
				return fmt.Errorf("invalid week day %d", day)
			}
		}
	}
	if in.ScheduleType == ScheduleEveryXDays && (in.IntervalDays == nil || *in.IntervalDays < 1) {
		return fmt.Errorf("interval_days must be at least 1 for schedule_type %s", ScheduleEveryXDays)
	}
	if len(in.TimesPerDay) == 0 {
		return fmt.Errorf("times_per_day are required")
	}
	if _, err := NormalizeTimesOfDay(in.TimesPerDay); err != nil {
		return err
	}
	return nil
}

// Apply overwrites every mutable field; the identifier and owner are kept.
func (in MedicationInput) Apply(m *Medication) error {
	times, err := NormalizeTimesOfDay(in.TimesPerDay)
	if err != nil {
		return err
	}
	m.Name = strings.TrimSpace(in.Name)
	m.Form = in.Form
	m.Instructions = in.Instructions
	m.StartDate = in.StartDate
	m.EndDate = in.EndDate
	m.ScheduleType = in.ScheduleType
	m.WeekDays = in.WeekDays
	m.IntervalDays = in.IntervalDays
	m.TimesPerDay = times
	return nil
}

type IntakeInput struct {
	MedicationID  int64
	ScheduledTime time.Time
	TakenTime     *time.Time
	Status        string
	Notes         *string
}

func ValidForm(form string) bool {
	switch form {
	case FormTablet, FormDrop, FormSpray, FormOther:
		return true
	}
	return false
}

func ValidScheduleType(scheduleType string) bool {
	switch scheduleType {
	case ScheduleDaily, ScheduleWeeklyDays, ScheduleEveryXDays:
		return true
	}
	return false
}

func ValidStatus(status string) bool {
	return status == StatusTaken || status == StatusSkipped
}

// NormalizeTimesOfDay parses client-supplied time-of-day strings and
// normalizes them to HH:MM. Accepts HH:MM and HH:MM:SS.
func NormalizeTimesOfDay(values []string) ([]string, error) {
	normalized := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		parsed, err := time.Parse("15:04", value)
		if err != nil {
			parsed, err = time.Parse("15:04:05", value)
			if err != nil {
				return nil, fmt.Errorf("invalid time of day %q", value)
			}
		}
		normalized = append(normalized, parsed.Format("15:04"))
	}
	return normalized, nil
}
