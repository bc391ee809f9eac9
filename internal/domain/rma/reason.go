package rma

// Reason is a localized return reason from the catalog maintained by the
// back office. The shop only reads it.
type Reason struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	LanguageISO string
	Reason      string
	SortOrder   int
	Active      bool
}

// TableName returns the database table name
func (Reason) TableName() string {
	return "rma_reasons"
}
