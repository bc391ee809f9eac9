package dbes

import (
	"context"
	"time"
)

// EntryType identifies the payload kind of a queue entry
const EntryTypeRMA = "rma"

// EntryStatus represents the delivery state of a queue entry
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "pending"
	EntryStatusDelivered EntryStatus = "delivered"
	EntryStatusFailed    EntryStatus = "failed"
)

// QueueEntry is one row in the dbeS export queue. The back office poller
// consumes pending entries and acknowledges them.
type QueueEntry struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Type      string
	Payload   string // XML document
	Status    EntryStatus
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name
func (QueueEntry) TableName() string {
	return "dbes_queue"
}

// NewRMAEntry creates a pending queue entry carrying a return request document
func NewRMAEntry(payload string) *QueueEntry {
	now := time.Now()
	return &QueueEntry{
		Type:      EntryTypeRMA,
		Payload:   payload,
		Status:    EntryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkDelivered records a successful pickup by the back office
func (e *QueueEntry) MarkDelivered() {
	e.Status = EntryStatusDelivered
	e.UpdatedAt = time.Now()
}

// MarkFailed records a delivery failure
func (e *QueueEntry) MarkFailed(errMsg string) {
	e.Status = EntryStatusFailed
	e.LastError = errMsg
	e.UpdatedAt = time.Now()
}

// QueueRepository defines persistence for the export queue
type QueueRepository interface {
	Enqueue(ctx context.Context, entry *QueueEntry) error
	FindPending(ctx context.Context, limit int) ([]QueueEntry, error)
	MarkDelivered(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
}
