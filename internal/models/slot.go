package models

// Slot is one bookable (or blocked) time unit returned by the booking
// server for a facility/date query. Slots are immutable snapshots on
// the client; a new load replaces them wholesale.
type Slot struct {
	ID                 string  `json:"id"`
	StartTime          string  `json:"start_time"` // "HH:MM", facility-local
	EndTime            string  `json:"end_time"`
	DisplayTime        string  `json:"display_time,omitempty"`
	SportName          string  `json:"sport_name,omitempty"`
	FacilitySportID    int64   `json:"facility_sport_id,omitempty"`
	BasePrice          float64 `json:"base_price,omitempty"`
	DiscountPercentage float64 `json:"discount_percentage,omitempty"`
	DiscountedPrice    float64 `json:"discounted_price,omitempty"`
	Price              float64 `json:"price,omitempty"`
	IsPast             bool    `json:"is_past"`
	IsLunch            bool    `json:"is_lunch"`
	IsBooked           bool    `json:"is_booked"`
	IsAvailable        bool    `json:"is_available"`
}

// Bookable reports whether the slot may be offered for selection.
func (s Slot) Bookable() bool {
	return !s.IsPast && !s.IsLunch && s.IsAvailable
}

// Offer is a promotional discount shown alongside slots. Offers are
// informational overlays, never selected on their own.
type Offer struct {
	ID                 int64   `json:"id,omitempty"`
	Title              string  `json:"title"`
	DiscountPercentage float64 `json:"discount_percentage"`
	StartDate          string  `json:"start_date,omitempty"`
	EndDate            string  `json:"end_date,omitempty"`
	IsActive           bool    `json:"is_active,omitempty"`
}

// SlotPage is one server response for a date/facility query.
type SlotPage struct {
	Slots  []Slot  `json:"slots"`
	Offers []Offer `json:"offers"`
}
