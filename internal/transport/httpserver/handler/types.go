package handler

import (
	"fmt"
	"strings"
	"time"

	meddomain "maisafe-go/internal/domain/medication"
)

const dateLayout = "2006-01-02"

type medicationRequest struct {
	Name         string   `json:"name"`
	Form         string   `json:"form"`
	Instructions *string  `json:"instructions"`
	StartDate    string   `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	ScheduleType string   `json:"schedule_type"`
	WeekDays     []int    `json:"week_days"`
	IntervalDays *int     `json:"interval_days"`
	TimesPerDay  []string `json:"times_per_day"`
}

func (req medicationRequest) toInput() (meddomain.MedicationInput, error) {
	startDate, err := parseDateRequired(req.StartDate)
	if err != nil {
		return meddomain.MedicationInput{}, fmt.Errorf("invalid start_date")
	}

	var endDate *time.Time
	if req.EndDate != nil {
		parsed, err := parseDateRequired(*req.EndDate)
		if err != nil {
			return meddomain.MedicationInput{}, fmt.Errorf("invalid end_date")
		}
		endDate = &parsed
	}

	return meddomain.MedicationInput{
		Name:         req.Name,
		Form:         req.Form,
		Instructions: req.Instructions,
		StartDate:    startDate,
		EndDate:      endDate,
		ScheduleType: req.ScheduleType,
		WeekDays:     req.WeekDays,
		IntervalDays: req.IntervalDays,
		TimesPerDay:  req.TimesPerDay,
	}, nil
}

type medicationResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Form         string    `json:"form"`
	Instructions *string   `json:"instructions"`
	StartDate    string    `json:"start_date"`
	EndDate      *string   `json:"end_date"`
	ScheduleType string    `json:"schedule_type"`
	WeekDays     []int     `json:"week_days"`
	IntervalDays *int      `json:"interval_days"`
	TimesPerDay  []string  `json:"times_per_day"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toMedicationResponse(m meddomain.Medication) medicationResponse {
	var endDate *string
	if m.EndDate != nil {
		formatted := m.EndDate.Format(dateLayout)
		endDate = &formatted
	}

	return medicationResponse{
		ID:           m.ID,
		Name:         m.Name,
		Form:         m.Form,
		Instructions: m.Instructions,
		StartDate:    m.StartDate.Format(dateLayout),
		EndDate:      endDate,
		ScheduleType: m.ScheduleType,
		WeekDays:     m.WeekDays,
		IntervalDays: m.IntervalDays,
		TimesPerDay:  m.TimesPerDay,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toMedicationResponses(items []meddomain.Medication) []medicationResponse {
	response := make([]medicationResponse, 0, len(items))
	for _, m := range items {
		response = append(response, toMedicationResponse(m))
	}
	return response
}

type intakeResponse struct {
	ID            int64     `json:"id"`
	MedicationID  int64     `json:"medication_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	TakenTime     time.Time `json:"taken_time"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toIntakeResponse(intake meddomain.IntakeHistory) intakeResponse {
	return intakeResponse{
		ID:            intake.ID,
		MedicationID:  intake.MedicationID,
		ScheduledTime: intake.ScheduledTime,
		TakenTime:     intake.TakenTime,
		Status:        intake.Status,
		Notes:         intake.Notes,
		CreatedAt:     intake.CreatedAt,
		UpdatedAt:     intake.UpdatedAt,
	}
}

func toIntakeResponses(items []meddomain.IntakeHistory) []intakeResponse {
	response := make([]intakeResponse, 0, len(items))
	for _, intake := range items {
		response = append(response, toIntakeResponse(intake))
	}
	return response
}

func parseDateRequired(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	return time.Parse(dateLayout, value)
}

func parseTimeParam(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
