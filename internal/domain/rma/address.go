package rma

import (
	"time"

	"github.com/returns/backend/internal/domain/shared"
)

// ReturnAddress is the pickup address snapshot stored with a return request.
// It is copied from the customer profile at creation time so later profile
// edits do not change historic requests.
type ReturnAddress struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	CustomerID  int64
	Salutation  string
	FirstName   string
	LastName    string
	Street      string
	HouseNumber string
	Zip         string
	City        string
	Country     string
	Phone       string
	CreatedAt   time.Time
}

// TableName returns the database table name
func (ReturnAddress) TableName() string {
	return "return_addresses"
}

// NewReturnAddress creates an address snapshot for a customer
func NewReturnAddress(customerID int64, firstName, lastName, street, zip, city string) (*ReturnAddress, error) {
	if customerID <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Customer ID must be positive")
	}
	if firstName == "" || lastName == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Name cannot be empty")
	}
	if street == "" || zip == "" || city == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Street, zip and city are required")
	}

	return &ReturnAddress{
		CustomerID: customerID,
		FirstName:  firstName,
		LastName:   lastName,
		Street:     street,
		Zip:        zip,
		City:       city,
		Country:    "DE",
		CreatedAt:  time.Now(),
	}, nil
}
