package incident

import (
	"errors"
	"time"
)

type Status string

const (
	StatusOpen          Status = "open"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
	StatusClosed        Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInvestigating, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Incident is an organization-scoped incident report. Incidents are the
// input to the AI risk suggestion analysis.
type Incident struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	OrganizationID string    `json:"organization_id" gorm:"column:organization_id;not null"`
	Title          string    `json:"title" gorm:"column:title;not null"`
	Description    string    `json:"description" gorm:"column:description"`
	Severity       Severity  `json:"severity" gorm:"column:severity"`
	Status         Status    `json:"status" gorm:"column:status;default:open"`
	OccurredAt     time.Time `json:"occurred_at" gorm:"column:occurred_at"`
	ReportedBy     string    `json:"reported_by" gorm:"column:reported_by"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Incident) TableName() string {
	return "incidents"
}

var ErrNotFound = errors.New("incident not found")
