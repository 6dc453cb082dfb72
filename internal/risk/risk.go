package risk

import (
	"errors"
	"time"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusMonitoring Status = "monitoring"
	StatusMitigated  Status = "mitigated"
	StatusClosed     Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusMonitoring, StatusMitigated, StatusClosed:
		return true
	}
	return false
}

// ActiveStatuses are the risk states the suggestion analysis matches
// incidents against. Mitigated and closed risks are not candidates.
var ActiveStatuses = []Status{StatusOpen, StatusMonitoring}

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

// Risk is an organization-scoped risk register entry.
type Risk struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	OrganizationID string    `json:"organization_id" gorm:"column:organization_id;not null"`
	Title          string    `json:"title" gorm:"column:title;not null"`
	Description    string    `json:"description" gorm:"column:description"`
	Category       string    `json:"category" gorm:"column:category"`
	Status         Status    `json:"status" gorm:"column:status;default:open"`
	Severity       Severity  `json:"severity" gorm:"column:severity"`
	OwnerID        *string   `json:"owner_id,omitempty" gorm:"column:owner_id"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Risk) TableName() string {
	return "risks"
}

var ErrNotFound = errors.New("risk not found")
