package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrValidation          = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrEmailMismatch       = NewDomainError("EMAIL_MISMATCH", "Email does not match the order")
	ErrPeriodExpired       = NewDomainError("PERIOD_EXPIRED", "Return period has expired")
	ErrExternalDelivery    = NewDomainError("EXTERNAL_DELIVERY_FAILURE", "Delivery to external system failed")
	ErrUnknownCarrier      = NewDomainError("UNKNOWN_CARRIER", "Shipping carrier is not configured")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
)
