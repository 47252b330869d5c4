// Package bot is the Telegram front end for the slot booking flow.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"turfkiosk/internal/config"
	"turfkiosk/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Bot struct {
	tg     domain.TelegramSender
	config *config.Config
	flow   domain.FlowManager
	logger *zerolog.Logger

	// Facility chosen but date not yet entered, keyed by user id.
	pendingFacility sync.Map
}

func NewBot(tg domain.TelegramSender, cfg *config.Config, flow domain.FlowManager, logger *zerolog.Logger) *Bot {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Bot{
		tg:     tg,
		config: cfg,
		flow:   flow,
		logger: logger,
	}
}

// sessionID maps a Telegram user onto a flow session.
func sessionID(userID int64) string {
	return fmt.Sprintf("tg:%d", userID)
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tg.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tg.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		var userID int64
		if update.Message != nil {
			userID = update.Message.From.ID
		} else if update.CallbackQuery != nil {
			userID = update.CallbackQuery.From.ID
		}

		if userID == 0 {
			return
		}

		limit := b.config.Sessions.RateLimitRequests
		window := time.Duration(b.config.Sessions.RateLimitWindowSeconds) * time.Second
		allowed, err := b.flow.CheckRateLimit(updateCtx, sessionID(userID), limit, window)
		if err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("Rate limit check failed")
		} else if !allowed {
			b.logger.Warn().Int64("user_id", userID).Msg("Rate limit exceeded")
			if update.Message != nil {
				b.sendMessage(update.Message.Chat.ID, "You are sending requests too fast. Please wait a moment.")
			}
			return
		}

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, update)
			return
		}

		if update.Message == nil {
			return
		}

		b.handleMessage(updateCtx, update)
	})
}

func (b *Bot) withRecovery(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	fn()
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}
