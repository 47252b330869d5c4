package bot

import (
	"errors"
	"fmt"
	"strings"

	"turfkiosk/internal/format"
	"turfkiosk/internal/models"
	"turfkiosk/internal/service"
	"turfkiosk/internal/turfzone"
	"turfkiosk/internal/view"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// renderBoard turns a slot page into message text plus an inline
// keyboard with one button per bookable slot.
func renderBoard(page models.SlotPage, selectedID, date string) (string, *tgbotapi.InlineKeyboardMarkup) {
	board := view.BuildBoard(page.Slots, page.Offers, selectedID)

	var sb strings.Builder
	if date != "" {
		fmt.Fprintf(&sb, "*Slots for %s*\n\n", date)
	}

	if board.Empty {
		sb.WriteString(board.EmptyMessage)
		keyboard := tgbotapi.NewInlineKeyboardMarkup(navRow())
		return sb.String(), &keyboard
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, band := range board.Bands {
		fmt.Fprintf(&sb, "*%s*\n", band.Label)
		for _, card := range band.Cards {
			marker := statusMarker(card)
			fmt.Fprintf(&sb, "%s %s · %s · %s", marker, card.DisplayTime, card.SportName, card.PriceLabel)
			if card.DiscountBadge != "" {
				fmt.Fprintf(&sb, " (%s)", card.DiscountBadge)
			}
			sb.WriteString("\n")

			if card.Bookable && !card.Selected {
				label := fmt.Sprintf("%s · %s", card.DisplayTime, card.PriceLabel)
				rows = append(rows, tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData(label, "slot:"+card.SlotID),
				))
			}
		}
		sb.WriteString("\n")
	}

	for _, offer := range board.Offers {
		fmt.Fprintf(&sb, "🏷 %s\n", offer.Label)
	}

	rows = append(rows, navRow())
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return strings.TrimRight(sb.String(), "\n"), &keyboard
}

func navRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", "refresh"),
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Facilities", "back_to_facilities"),
	)
}

func statusMarker(card view.Card) string {
	switch {
	case card.Selected:
		return "👉"
	case card.Bookable:
		return "🟢"
	default:
		return "🔒"
	}
}

func confirmLine(slot *models.Slot) string {
	return fmt.Sprintf("%s · %s", format.DisplayTime(*slot), format.Price(format.CurrentPrice(*slot)))
}

func loadErrorText(err error) string {
	var serverErr *turfzone.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	if errors.Is(err, turfzone.ErrMalformedResponse) {
		return "The booking server returned something unexpected. Please try again."
	}
	return "Could not reach the booking server. Please try again later."
}

func bookErrorText(err error) string {
	var bookingErr *turfzone.BookingError
	switch {
	case errors.Is(err, turfzone.ErrNoSelection):
		return "Select a slot first."
	case errors.Is(err, service.ErrBookingInFlight):
		return "Your booking is already being processed."
	case errors.As(err, &bookingErr):
		return bookingErr.Message
	default:
		return "Booking failed, please try again."
	}
}
