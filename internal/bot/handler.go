package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"turfkiosk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	userID := message.From.ID

	if message.IsCommand() {
		switch message.Command() {
		case "start", "facilities":
			b.sendFacilityMenu(message.Chat.ID)
		case "board":
			b.sendBoard(ctx, message.Chat.ID, userID)
		case "help":
			b.sendMessage(message.Chat.ID, helpText)
		default:
			b.sendMessage(message.Chat.ID, "Unknown command. Try /help.")
		}
		return
	}

	// A plain message is only meaningful as a date after a facility
	// has been chosen.
	facilityID, ok := b.pendingFacility.Load(userID)
	if !ok {
		b.sendFacilityMenu(message.Chat.ID)
		return
	}

	date := strings.TrimSpace(message.Text)
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		b.sendMessage(message.Chat.ID, "Please enter the date as YYYY-MM-DD, for example 2025-06-01.")
		return
	}

	b.pendingFacility.Delete(userID)
	if _, err := b.flow.Load(ctx, sessionID(userID), date, facilityID.(string)); err != nil {
		b.sendMessage(message.Chat.ID, loadErrorText(err))
		return
	}
	b.sendBoard(ctx, message.Chat.ID, userID)
}

const helpText = `Book a turf slot:
/start — choose a facility
/board — show the current slot board
Tap a slot to select it, then confirm to book.`

func (b *Bot) sendFacilityMenu(chatID int64) {
	facilities := b.config.Facilities
	if len(facilities) == 0 {
		b.sendMessage(chatID, "No facilities are configured.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(facilities))
	for _, f := range facilities {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.Name, "facility:"+f.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, "Choose a facility:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send facility menu")
	}
}

func (b *Bot) sendBoard(ctx context.Context, chatID, userID int64) {
	sid := sessionID(userID)
	page, selectedID := b.flow.Snapshot(sid)
	date, _ := b.flow.Query(sid)

	text, keyboard := renderBoard(page, selectedID, date)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send board")
	}
}

func (b *Bot) sendConfirmPrompt(chatID int64, slot *models.Slot) {
	text := fmt.Sprintf("Selected *%s*\n%s\nConfirm booking?", slot.SportName, confirmLine(slot))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Book", "book"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel:"+slot.ID),
		),
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send confirmation prompt")
	}
}
