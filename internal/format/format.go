// Package format holds the pure display transforms for slots: time
// conversion, price resolution and status classification.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"turfkiosk/internal/models"
)

// StatusDescriptor is the fixed display vocabulary for a slot state.
type StatusDescriptor struct {
	Class string `json:"class"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

var (
	StatusPast      = StatusDescriptor{Class: "status-past", Label: "Past", Icon: "fa-clock"}
	StatusLunch     = StatusDescriptor{Class: "status-lunch", Label: "Lunch Break", Icon: "fa-utensils"}
	StatusBooked    = StatusDescriptor{Class: "status-booked", Label: "Booked", Icon: "fa-lock"}
	StatusAvailable = StatusDescriptor{Class: "status-available", Label: "Available", Icon: "fa-check-circle"}
)

// Time converts a 24-hour "HH:MM" string to a 12-hour display form
// such as "9:00 AM". Malformed input is returned unchanged.
func Time(t string) string {
	hh, mm, ok := strings.Cut(t, ":")
	if !ok {
		return t
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return t
	}

	suffix := "AM"
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		hour -= 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%s %s", hour, mm, suffix)
}

// ClassifyStatus picks the displayed status for a slot. The flags are
// not mutually exclusive in the data; the first true flag in the
// order past > lunch > booked > available wins.
func ClassifyStatus(s models.Slot) StatusDescriptor {
	switch {
	case s.IsPast:
		return StatusPast
	case s.IsLunch:
		return StatusLunch
	case s.IsBooked:
		return StatusBooked
	case s.IsAvailable:
		return StatusAvailable
	}
	return StatusDescriptor{}
}

// DisplayTime returns the precomputed display string when the server
// provided one, otherwise derives it from the start and end times.
func DisplayTime(s models.Slot) string {
	if s.DisplayTime != "" {
		return s.DisplayTime
	}
	return fmt.Sprintf("%s - %s", Time(s.StartTime), Time(s.EndTime))
}

// DiscountedPrice applies a percentage discount and rounds to two
// decimal places. Rounding is for display only; stored prices keep
// full precision.
func DiscountedPrice(base, pct float64) float64 {
	return round2(base * (1 - pct/100))
}

// CurrentPrice resolves the price shown for a slot: the discounted
// price when a discount applies, the base price otherwise. Older
// server responses carry a single "price" field instead of
// base/discounted pairs.
func CurrentPrice(s models.Slot) float64 {
	base := s.BasePrice
	if base == 0 {
		base = s.Price
	}
	if s.DiscountPercentage > 0 {
		if s.DiscountedPrice > 0 {
			return round2(s.DiscountedPrice)
		}
		return DiscountedPrice(base, s.DiscountPercentage)
	}
	return base
}

// Price renders a monetary value the way slot cards show it.
func Price(v float64) string {
	return fmt.Sprintf("₹%.2f", v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
