package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	data := callback.Data
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	// Answer right away so the client stops showing a spinner.
	callbackConfig := tgbotapi.NewCallback(callback.ID, "")
	if _, err := b.tg.Request(callbackConfig); err != nil {
		b.logger.Error().Err(err).Msg("Failed to answer callback")
	}

	switch {
	case strings.HasPrefix(data, "facility:"):
		facilityID := strings.TrimPrefix(data, "facility:")
		b.pendingFacility.Store(userID, facilityID)
		b.sendMessage(chatID, "Enter the date as YYYY-MM-DD, for example 2025-06-01:")

	case strings.HasPrefix(data, "slot:"):
		b.handleSlotSelected(ctx, chatID, userID, strings.TrimPrefix(data, "slot:"))

	case strings.HasPrefix(data, "cancel:"):
		// Selecting the same slot again toggles the selection off.
		slotID := strings.TrimPrefix(data, "cancel:")
		if _, err := b.flow.Select(ctx, sessionID(userID), slotID); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to clear selection")
		}
		b.sendBoard(ctx, chatID, userID)

	case data == "book":
		b.handleBook(ctx, chatID, userID)

	case data == "refresh":
		sid := sessionID(userID)
		date, facilityID := b.flow.Query(sid)
		if _, err := b.flow.Load(ctx, sid, date, facilityID); err != nil {
			b.sendMessage(chatID, loadErrorText(err))
			return
		}
		b.sendBoard(ctx, chatID, userID)

	case data == "back_to_facilities":
		b.pendingFacility.Delete(userID)
		b.sendFacilityMenu(chatID)
	}
}

func (b *Bot) handleSlotSelected(ctx context.Context, chatID, userID int64, slotID string) {
	sid := sessionID(userID)

	selected, err := b.flow.Select(ctx, sid, slotID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Str("slot_id", slotID).Msg("Selection failed")
		b.sendMessage(chatID, "Something went wrong, please try again.")
		return
	}
	if !selected {
		b.sendMessage(chatID, "That slot is no longer available. Pick another one.")
		b.sendBoard(ctx, chatID, userID)
		return
	}

	page, selectedID := b.flow.Snapshot(sid)
	for i := range page.Slots {
		if page.Slots[i].ID == selectedID {
			b.sendConfirmPrompt(chatID, &page.Slots[i])
			return
		}
	}
}

func (b *Bot) handleBook(ctx context.Context, chatID, userID int64) {
	confirmation, err := b.flow.Submit(ctx, sessionID(userID))
	if err != nil {
		b.sendMessage(chatID, bookErrorText(err))
		return
	}

	text := fmt.Sprintf("🎉 %s", confirmation.Message)
	if confirmation.BookingID != 0 {
		text += fmt.Sprintf("\nBooking #%d", confirmation.BookingID)
	}
	if confirmation.TotalPrice != "" {
		text += fmt.Sprintf("\nTotal: ₹%s", confirmation.TotalPrice)
	}
	if confirmation.PaymentDeadline != "" {
		text += fmt.Sprintf("\nPay before: %s", confirmation.PaymentDeadline)
	}
	b.sendMessage(chatID, text)
	b.sendBoard(ctx, chatID, userID)
}
