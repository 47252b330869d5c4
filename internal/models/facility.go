package models

// Facility is a bookable venue known to the kiosk. The list comes
// from configuration; the server remains the source of truth for
// availability.
type Facility struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// FacilitySport describes one sport offered at a facility together
// with its per-slot pricing.
type FacilitySport struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	PricePerSlot float64 `json:"price_per_slot"`
	MaxPlayers   int     `json:"max_players,omitempty"`
	IsAvailable  bool    `json:"is_available"`
}
