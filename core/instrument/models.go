package instrument

import "time"

// Instrument is one physical troupe instrument (parai, kombu, sangu, ...).
// Checkout state lives on the row itself; history is not kept.
type Instrument struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	ImageURL     string     `json:"image_url"`
	CheckedOutBy *string    `json:"checked_out_by"`
	CheckedOutAt *time.Time `json:"checked_out_at"` // UTC
	UpdatedAt    time.Time  `json:"updated_at"`     // UTC
}

func (i Instrument) IsCheckedOut() bool {
	return i.CheckedOutBy != nil
}

// DaysOut counts calendar days since checkout, checkout day included.
func (i Instrument) DaysOut(now time.Time) int {
	if i.CheckedOutAt == nil {
		return 0
	}
	return int(now.Sub(*i.CheckedOutAt).Hours()/24) + 1
}

// CheckoutRequest is the payload for checking an instrument out to a member.
type CheckoutRequest struct {
	MemberName string `json:"member_name" validate:"required"`
}
