package regulator

import (
	"errors"
	"time"
)

// Regulator is a supervisory body that can be granted read access to
// organizations through RegulatorAccess rows.
type Regulator struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	Country   string    `json:"country" gorm:"column:country"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Regulator) TableName() string {
	return "regulators"
}

// Access associates a regulator-role user with a regulator entity. Rows are
// only created after every referenced regulator ID has been validated.
type Access struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"column:user_id;not null"`
	RegulatorID string    `json:"regulator_id" gorm:"column:regulator_id;not null"`
	GrantedBy   string    `json:"granted_by" gorm:"column:granted_by;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Access) TableName() string {
	return "regulator_access"
}

var ErrNotFound = errors.New("regulator not found")
