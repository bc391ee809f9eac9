package rma

// Status represents the lifecycle state of a return request.
// The numeric values are shared with the back office and must not change.
type Status int

const (
	StatusOpen       Status = 0
	StatusInProgress Status = 1
	StatusAccepted   Status = 2
	StatusCompleted  Status = 3
	StatusRejected   Status = 4
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	return s >= StatusOpen && s <= StatusRejected
}

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusAccepted:
		return "ACCEPTED"
	case StatusCompleted:
		return "COMPLETED"
	case StatusRejected:
		return "REJECTED"
	}
	return "UNKNOWN"
}

// ItemStatus represents the per-line decision on a returned item
type ItemStatus int

const (
	ItemStatusPending  ItemStatus = 0
	ItemStatusAccepted ItemStatus = 1
	ItemStatusRejected ItemStatus = 2
	ItemStatusRefunded ItemStatus = 3
)

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	return s >= ItemStatusPending && s <= ItemStatusRefunded
}

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	switch s {
	case ItemStatusPending:
		return "PENDING"
	case ItemStatusAccepted:
		return "ACCEPTED"
	case ItemStatusRejected:
		return "REJECTED"
	case ItemStatusRefunded:
		return "REFUNDED"
	}
	return "UNKNOWN"
}
