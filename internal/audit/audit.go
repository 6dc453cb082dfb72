package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/minrisk/risk-management/internal/core/events"
)

// Entry is one audit row. Writes are best-effort: a failed audit insert is
// logged but never fails the operation that produced it.
type Entry struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	EventID   string    `json:"event_id" gorm:"column:event_id"`
	EventType string    `json:"event_type" gorm:"column:event_type;not null"`
	Detail    string    `json:"detail" gorm:"column:detail"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Entry) TableName() string {
	return "audit_log"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(entry *Entry) error {
	return r.db.Create(entry).Error
}

// auditedEventTypes are the domain events that produce audit rows.
var auditedEventTypes = []string{
	"invitation.created",
	"invitation.accepted",
	"profile.status_changed",
	"regulator.access_granted",
}

// Subscribe registers audit handlers on the event bus.
func Subscribe(bus *events.EventBus, repo *Repository, logger *slog.Logger) {
	handler := func(ctx context.Context, event events.Event) error {
		detail, err := json.Marshal(event.Payload())
		if err != nil {
			detail = []byte("{}")
		}

		entry := &Entry{
			EventID:   event.EventID(),
			EventType: event.EventType(),
			Detail:    string(detail),
			CreatedAt: event.OccurredAt(),
		}

		if err := repo.Insert(entry); err != nil {
			logger.Warn("audit insert failed", "event_type", event.EventType(), "error", err)
			return err
		}
		return nil
	}

	for _, eventType := range auditedEventTypes {
		bus.Subscribe(eventType, handler)
	}
}
