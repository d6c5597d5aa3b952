package models

import "time"

// Request statuses. Approved/rejected are terminal — no further mutation.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// TopupRequest is a user's pending coin purchase. Coins are credited only
// when an admin approves; the request itself never moves money.
type TopupRequest struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`
	Amount int64  `gorm:"not null" json:"amount"` // INR
	Coins  int64  `gorm:"not null" json:"coins"`  // Amount * CoinsPerRupee
	UPIID  string `gorm:"column:upi_id" json:"upi_id"`
	Status string `gorm:"type:varchar(16);default:'pending';check:status IN ('pending','approved','rejected')" json:"status"`

	DecidedBy string     `json:"decided_by,omitempty"` // admin email
	DecidedAt *time.Time `json:"decided_at,omitempty"`

	Timestamps
}

// WithdrawRequest holds coins from the moment it is filed. CoinsHeld is
// deducted inside the filing transaction; a rejection refunds it.
type WithdrawRequest struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string `gorm:"index;not null" json:"user_id"`
	Amount    int64  `gorm:"not null" json:"amount"`     // INR paid out
	CoinsHeld int64  `gorm:"not null" json:"coins_held"` // ceil(Amount * 1.1), the 10% house cut on top
	UPIID     string `gorm:"column:upi_id" json:"upi_id"`
	Status    string `gorm:"type:varchar(16);default:'pending';check:status IN ('pending','approved','rejected')" json:"status"`

	DecidedBy string     `json:"decided_by,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`

	// Payout worker state: an approved request is handed to the payout rail
	// exactly once.
	PaidOut bool       `gorm:"default:false;index" json:"paid_out"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`

	Timestamps
}
