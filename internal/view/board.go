// Package view turns store contents into a renderable board
// description. It produces data, not markup; the HTML and Telegram
// adapters decide how a board looks on their surface.
package view

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"turfkiosk/internal/format"
	"turfkiosk/internal/models"
)

// Band names in display order.
const (
	BandMorning   = "Morning"
	BandAfternoon = "Afternoon"
	BandEvening   = "Evening"
)

var bandLabels = map[string]string{
	BandMorning:   "Morning (6 AM - 12 PM)",
	BandAfternoon: "Afternoon (12 PM - 5 PM)",
	BandEvening:   "Evening (5 PM - 10 PM)",
}

// Card is one slot rendered for display.
type Card struct {
	SlotID          string                  `json:"slot_id"`
	FacilitySportID int64                   `json:"facility_sport_id"`
	DisplayTime     string                  `json:"display_time"`
	SportName       string                  `json:"sport_name"`
	BasePrice       float64                 `json:"base_price"`
	CurrentPrice    float64                 `json:"current_price"`
	PriceLabel      string                  `json:"price_label"`
	DiscountBadge   string                  `json:"discount_badge,omitempty"`
	Status          format.StatusDescriptor `json:"status"`
	Bookable        bool                    `json:"bookable"`
	Selected        bool                    `json:"selected"`
}

// BandGroup is one time band with its cards, already sorted.
type BandGroup struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Cards []Card `json:"cards"`
}

// OfferBadge is one promotional offer rendered as a badge.
type OfferBadge struct {
	Title string `json:"title"`
	Label string `json:"label"`
}

// Board is the complete display state for a slot query.
type Board struct {
	Empty         bool         `json:"empty"`
	EmptyMessage  string       `json:"empty_message,omitempty"`
	Bands         []BandGroup  `json:"bands"`
	Offers        []OfferBadge `json:"offers"`
	OffersMessage string       `json:"offers_message,omitempty"`
}

// BuildBoard filters, sorts and groups slots into time bands and
// attaches offers. Past and lunch slots are never shown. selectedID
// marks the card the session currently has selected.
func BuildBoard(slots []models.Slot, offers []models.Offer, selectedID string) Board {
	visible := make([]models.Slot, 0, len(slots))
	for _, s := range slots {
		if s.IsPast || s.IsLunch {
			continue
		}
		visible = append(visible, s)
	}

	// Zero-padded HH:MM sorts lexicographically in chronological
	// order.
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].StartTime < visible[j].StartTime
	})

	board := Board{Offers: buildOffers(offers)}
	if len(board.Offers) == 0 {
		board.OffersMessage = "No active offers"
	}

	if len(visible) == 0 {
		board.Empty = true
		board.EmptyMessage = "No slots available for this date"
		return board
	}

	grouped := map[string][]Card{}
	for _, s := range visible {
		band := bandFor(s.StartTime)
		grouped[band] = append(grouped[band], buildCard(s, selectedID))
	}

	for _, name := range []string{BandMorning, BandAfternoon, BandEvening} {
		cards := grouped[name]
		if len(cards) == 0 {
			continue
		}
		board.Bands = append(board.Bands, BandGroup{Name: name, Label: bandLabels[name], Cards: cards})
	}
	return board
}

// bandFor maps a start time to its band: [6,12) Morning, [12,17)
// Afternoon, everything else Evening. Slots before 06:00 group into
// Evening by exclusion, matching the server's own grouping.
func bandFor(startTime string) string {
	hh, _, _ := strings.Cut(startTime, ":")
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return BandEvening
	}
	switch {
	case hour >= 6 && hour < 12:
		return BandMorning
	case hour >= 12 && hour < 17:
		return BandAfternoon
	default:
		return BandEvening
	}
}

func buildCard(s models.Slot, selectedID string) Card {
	card := Card{
		SlotID:          s.ID,
		FacilitySportID: s.FacilitySportID,
		DisplayTime:     format.DisplayTime(s),
		SportName:       s.SportName,
		BasePrice:       s.BasePrice,
		CurrentPrice:    format.CurrentPrice(s),
		Status:          format.ClassifyStatus(s),
		Bookable:        s.Bookable(),
		Selected:        selectedID != "" && s.ID == selectedID,
	}
	card.PriceLabel = format.Price(card.CurrentPrice)
	if s.DiscountPercentage > 0 {
		card.DiscountBadge = fmt.Sprintf("%g%% OFF", s.DiscountPercentage)
	}
	return card
}

func buildOffers(offers []models.Offer) []OfferBadge {
	badges := make([]OfferBadge, 0, len(offers))
	for _, o := range offers {
		badges = append(badges, OfferBadge{
			Title: o.Title,
			Label: fmt.Sprintf("%s - %g%% off", o.Title, o.DiscountPercentage),
		})
	}
	return badges
}
