package domain

import "time"

type SurveyID string

type SurveyType string

const (
	SurveyTypeAnnual      SurveyType = "annual"
	SurveyTypeCondition   SurveyType = "condition"
	SurveyTypeDamage      SurveyType = "damage"
	SurveyTypePrePurchase SurveyType = "pre-purchase"
)

// ValidSurveyType reports whether t is one of the supported survey types.
func ValidSurveyType(t SurveyType) bool {
	switch t {
	case SurveyTypeAnnual, SurveyTypeCondition, SurveyTypeDamage, SurveyTypePrePurchase:
		return true
	}
	return false
}

type SurveyStatus string

const (
	StatusDraft      SurveyStatus = "draft"
	StatusScheduled  SurveyStatus = "scheduled"
	StatusInProgress SurveyStatus = "in_progress"
	StatusCompleted  SurveyStatus = "completed"
	StatusCancelled  SurveyStatus = "cancelled"
)

func ValidSurveyStatus(s SurveyStatus) bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Survey struct {
	ID          SurveyID     `json:"id"`
	OwnerID     UserID       `json:"owner_id"`
	Title       string       `json:"title"`
	VesselName  string       `json:"vessel_name"`
	Type        SurveyType   `json:"survey_type"`
	ScheduledAt time.Time    `json:"scheduled_at"`
	Location    string       `json:"location"`
	Description string       `json:"description,omitempty"`
	Status      SurveyStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}
