package rma

import (
	"encoding/json"
	"time"

	"github.com/returns/backend/internal/domain/shared"
)

// EventKind identifies a history log entry. The vocabulary is closed;
// consumers switch on these values.
type EventKind string

const (
	EventCreated            EventKind = "rma_created"
	EventStatusChanged      EventKind = "status_changed"
	EventItemStatusUpdated  EventKind = "item_status_updated"
	EventWawiSynced         EventKind = "wawi_synced"
	EventWawiUpdateReceived EventKind = "wawi_update_received"
	EventLabelCreated       EventKind = "label_created"
	EventEmailConfirmation  EventKind = "email_confirmation_sent"
	EventEmailStatusUpdate  EventKind = "email_status_update_sent"
	EventEmailVoucherSent   EventKind = "email_voucher_sent"
	EventEmailRefundSent    EventKind = "email_refund_sent"
	EventCustomerAnonymized EventKind = "customer_anonymized"
	EventCommentAdded       EventKind = "comment_added"
	EventAdminNoteAdded     EventKind = "admin_note_added"
)

// IsValid checks if the kind belongs to the closed vocabulary
func (k EventKind) IsValid() bool {
	switch k {
	case EventCreated, EventStatusChanged, EventItemStatusUpdated,
		EventWawiSynced, EventWawiUpdateReceived, EventLabelCreated,
		EventEmailConfirmation, EventEmailStatusUpdate, EventEmailVoucherSent,
		EventEmailRefundSent, EventCustomerAnonymized, EventCommentAdded,
		EventAdminNoteAdded:
		return true
	}
	return false
}

// HistoryEvent is an append-only audit record for a return request
type HistoryEvent struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	RMAID     int64
	Kind      EventKind
	Payload   string // JSON object with event-specific details
	ActorID   *int64 // nil for system-initiated events
	CreatedAt time.Time
}

// TableName returns the database table name
func (HistoryEvent) TableName() string {
	return "rma_history"
}

// NewHistoryEvent creates a history entry with a JSON payload
func NewHistoryEvent(rmaID int64, kind EventKind, payload map[string]any, actorID *int64) (*HistoryEvent, error) {
	if rmaID <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "RMA ID must be positive")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown history event kind: "+string(kind))
	}

	data := []byte("{}")
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = encoded
	}

	return &HistoryEvent{
		RMAID:     rmaID,
		Kind:      kind,
		Payload:   string(data),
		ActorID:   actorID,
		CreatedAt: time.Now(),
	}, nil
}

// PayloadMap decodes the JSON payload
func (e *HistoryEvent) PayloadMap() (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(e.Payload), &m); err != nil {
		return nil, err
	}
	return m, nil
}
