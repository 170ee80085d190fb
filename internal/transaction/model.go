// Package transaction provides the sale transaction model and data access.
package transaction

import "time"

// Status is the state of a sale.
type Status string

const (
	Completed Status = "Completed"
	Pending   Status = "Pending"
	Cancelled Status = "Cancelled"
)

// ValidStatuses is the set of allowed transaction statuses.
var ValidStatuses = []Status{Completed, Pending, Cancelled}

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Action returns the follow-up label shown next to a transaction.
func (s Status) Action() string {
	switch s {
	case Completed:
		return "View Receipt"
	case Pending:
		return "Follow Up"
	default:
		return "Review"
	}
}

// Transaction is a recorded sale of a property.
type Transaction struct {
	ID              int64     `json:"id"`
	PropertyID      int64     `json:"property_id"`
	TransactionDate string    `json:"transaction_date"` // YYYY-MM-DD
	Amount          float64   `json:"amount"`
	Status          Status    `json:"status"`
	BuyerName       string    `json:"buyer_name"`
	CreatedAt       time.Time `json:"created_at"`
}

// Recent is a transaction joined with its property for dashboard display.
type Recent struct {
	TransactionID int64   `json:"transaction_id"`
	PropertyCode  string  `json:"property_id"`
	City          string  `json:"city"`
	Status        Status  `json:"status"`
	Value         float64 `json:"value"`
	Date          string  `json:"date"`
	Action        string  `json:"action"`
}
