package customer

import "context"

// Customer is the read model of a shop customer account
type Customer struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	Salutation  string
	FirstName   string
	LastName    string
	Street      string
	HouseNumber string
	Zip         string
	City        string
	Country     string
	Email       string
	Phone       string
}

// TableName returns the database table name
func (Customer) TableName() string {
	return "customers"
}

// Repository reads customer accounts
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Customer, error)
}
