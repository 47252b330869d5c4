package models

import "time"

// BookingConfirmation mirrors the server response for a successful
// booking submission.
type BookingConfirmation struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	BookingID       int64  `json:"booking_id"`
	TotalPrice      string `json:"total_price,omitempty"`
	PaymentDeadline string `json:"payment_deadline,omitempty"`
	RedirectURL     string `json:"redirect_url,omitempty"`
}

// BookingRecord is the locally stored trace of a confirmed booking.
type BookingRecord struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"booking_id"`
	SessionID   string    `json:"session_id"`
	SlotID      string    `json:"slot_id"`
	FacilityID  string    `json:"facility_id"`
	SportName   string    `json:"sport_name"`
	DisplayTime string    `json:"display_time"`
	Date        string    `json:"date"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
