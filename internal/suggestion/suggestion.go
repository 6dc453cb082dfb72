package suggestion

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// DefaultConfidenceThreshold is the cutoff below which AI matches are
// discarded rather than stored.
const DefaultConfidenceThreshold = 70

// RiskSuggestion links an incident to an existing risk the AI considers
// related. Re-analysis replaces the pending set for an incident; accepted
// and rejected rows are kept as history.
type RiskSuggestion struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	IncidentID      string    `json:"incident_id" gorm:"column:incident_id;not null"`
	RiskID          string    `json:"risk_id" gorm:"column:risk_id;not null"`
	ConfidenceScore int       `json:"confidence_score" gorm:"column:confidence_score"`
	Reasoning       string    `json:"reasoning" gorm:"column:reasoning"`
	KeywordsMatched string    `json:"keywords_matched" gorm:"column:keywords_matched"`
	Status          Status    `json:"status" gorm:"column:status;default:pending"`
	AIModelVersion  string    `json:"ai_model_version" gorm:"column:ai_model_version"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (RiskSuggestion) TableName() string {
	return "risk_suggestions"
}

// HistoricalPattern summarizes how often suggestions against a risk were
// accepted, fed into the prompt so the model can weigh precedent.
type HistoricalPattern struct {
	RiskID        string `json:"risk_id"`
	RiskTitle     string `json:"risk_title"`
	AcceptedCount int    `json:"accepted_count"`
}

var ErrNotFound = errors.New("suggestion not found")
