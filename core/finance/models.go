package finance

import "time"

const (
	StatusPaid   PaymentStatus = "paid"
	StatusUnpaid PaymentStatus = "unpaid"
)

type PaymentStatus string

func (s PaymentStatus) Valid() bool {
	return s == StatusPaid || s == StatusUnpaid
}

// PaymentRecord tracks a member's current payment state within a section.
// Unlike attendance this is a read-modify-write cell, not an event log.
type PaymentRecord struct {
	Section    string        `json:"section" db:"section"`
	MemberName string        `json:"member_name" db:"member_name"`
	Status     PaymentStatus `json:"status" db:"status"`
	UpdatedBy  string        `json:"updated_by" db:"updated_by"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"` // UTC
}

// UpdateRequest is the payload for setting a member's payment status.
type UpdateRequest struct {
	MemberName string `json:"member_name" validate:"required"`
	Status     string `json:"status" validate:"required,oneof=paid unpaid"`
}
