package setting

import (
	"context"
	"time"
)

// Keys used by the return workflow
const (
	KeyLastSyncTime = "rma_last_sync_time"
)

// Setting is a single key/value configuration row
type Setting struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// TableName returns the database table name
func (Setting) TableName() string {
	return "settings"
}

// Repository provides access to persisted settings
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
