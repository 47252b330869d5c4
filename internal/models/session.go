package models

import "time"

// SessionState is the durable part of one kiosk session: the query
// the user last ran and the slot they currently have selected. The
// slot list itself is never persisted; it is refetched on demand.
type SessionState struct {
	SessionID      string    `json:"session_id"`
	Date           string    `json:"date"`
	FacilityID     string    `json:"facility_id"`
	SelectedSlotID string    `json:"selected_slot_id,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}
